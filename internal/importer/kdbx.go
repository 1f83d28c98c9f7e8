// Package importer reads credentials from other password managers.
package importer

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/illarion/hush/internal/storage"
	gokeepasslib "github.com/tobischo/gokeepasslib/v3"
)

// ErrKDBX is returned when a KeePass database cannot be decrypted,
// usually because the password is wrong
var ErrKDBX = errors.New("cannot read KeePass database")

// OpenKDBX imports the KeePass database at path
func OpenKDBX(path, password string) ([]storage.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return ReadKDBX(f, password)
}

// ReadKDBX decodes a KeePass database and returns one record per entry, in
// group order, subgroups after their parent's own entries. Entries without a
// title are skipped.
func ReadKDBX(r io.Reader, password string) ([]storage.Record, error) {
	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(password)

	if err := gokeepasslib.NewDecoder(r).Decode(db); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKDBX, err)
	}
	if err := db.UnlockProtectedEntries(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKDBX, err)
	}

	if db.Content == nil || db.Content.Root == nil {
		return nil, nil
	}

	var records []storage.Record
	collect(&records, db.Content.Root.Groups)
	return records, nil
}

func collect(records *[]storage.Record, groups []gokeepasslib.Group) {
	for _, group := range groups {
		for _, entry := range group.Entries {
			rec := storage.Record{
				Title:  entry.GetTitle(),
				Login:  entry.GetContent("UserName"),
				Secret: entry.GetPassword(),
			}
			if rec.Valid() {
				*records = append(*records, rec)
			}
		}
		collect(records, group.Groups)
	}
}
