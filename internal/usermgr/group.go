package usermgr

import (
	"sort"
	"strings"
)

type GroupFile struct {
	db db[GroupEntry]
}

func LoadGroup(path string) (*GroupFile, error) {
	d, err := loadDB(path, 4, func(f []string) (GroupEntry, error) {
		gid, err := atoi(f[2], "gid")
		if err != nil {
			return GroupEntry{}, err
		}
		var members []string
		for _, m := range strings.Split(f[3], ",") {
			if m = strings.TrimSpace(m); m != "" {
				members = append(members, m)
			}
		}
		return GroupEntry{Name: f[0], Passwd: f[1], GID: gid, Members: members}, nil
	})
	if err != nil {
		return nil, err
	}
	return &GroupFile{db: d}, nil
}

func (f *GroupFile) Find(name string) *GroupEntry {
	return f.db.find(func(e *GroupEntry) bool { return e.Name == name })
}

// GIDsOf returns the sorted, de-duplicated ids of every group listing user as
// a member, plus primary. This is the supplementary group set initgroups(3)
// would install.
func (f *GroupFile) GIDsOf(user string, primary int) []int {
	seen := map[int]bool{primary: true}
	out := []int{primary}
	for _, e := range f.db.entries {
		if seen[e.GID] {
			continue
		}
		for _, m := range e.Members {
			if m == user {
				seen[e.GID] = true
				out = append(out, e.GID)
				break
			}
		}
	}
	sort.Ints(out)
	return out
}
