package usermgr

type ShadowFile struct {
	db db[ShadowEntry]
}

// LoadShadow reads a shadow(5) file. Missing aging fields read as empty.
func LoadShadow(path string) (*ShadowFile, error) {
	d, err := loadDB(path, 2, func(f []string) (ShadowEntry, error) {
		for len(f) < 9 {
			f = append(f, "")
		}
		return ShadowEntry{
			Name:       f[0],
			Hash:       f[1],
			LastChange: f[2],
			Min:        f[3],
			Max:        f[4],
			Warn:       f[5],
			Inactive:   f[6],
			Expire:     f[7],
			Reserved:   f[8],
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &ShadowFile{db: d}, nil
}

func (f *ShadowFile) Find(name string) *ShadowEntry {
	return f.db.find(func(e *ShadowEntry) bool { return e.Name == name })
}
