package usermgr

import "strings"

// LoadShells returns the login shells listed in an /etc/shells style file,
// in file order, without comments, blanks or duplicates.
func LoadShells(path string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	err := eachLine(path, func(line string) {
		s := strings.TrimSpace(line)
		if !strings.HasPrefix(s, "/") || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
