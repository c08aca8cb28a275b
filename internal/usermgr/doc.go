// Package usermgr reads the host user databases: /etc/passwd, /etc/shadow,
// /etc/group and /etc/shells.
//
// Unknown or malformed lines are preserved as raw lines rather than rejected,
// so a single odd entry never hides the rest of the file.
package usermgr
