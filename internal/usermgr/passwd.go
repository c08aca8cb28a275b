package usermgr

type PasswdFile struct {
	db db[PasswdEntry]
}

func LoadPasswd(path string) (*PasswdFile, error) {
	d, err := loadDB(path, 7, func(f []string) (PasswdEntry, error) {
		uid, err := atoi(f[2], "uid")
		if err != nil {
			return PasswdEntry{}, err
		}
		gid, err := atoi(f[3], "gid")
		if err != nil {
			return PasswdEntry{}, err
		}
		return PasswdEntry{
			Name:   f[0],
			Passwd: f[1],
			UID:    uid,
			GID:    gid,
			Gecos:  f[4],
			Home:   f[5],
			Shell:  f[6],
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &PasswdFile{db: d}, nil
}

func (f *PasswdFile) Find(name string) *PasswdEntry {
	return f.db.find(func(e *PasswdEntry) bool { return e.Name == name })
}

// List returns a copy of every parsed entry in file order.
func (f *PasswdFile) List() []PasswdEntry {
	return append([]PasswdEntry(nil), f.db.entries...)
}

// Skipped is the number of lines that could not be parsed.
func (f *PasswdFile) Skipped() int { return f.db.skipped }
