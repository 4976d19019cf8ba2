package index

import "errors"

// updateRetries bounds how often Update re-reads after a version conflict.
const updateRetries = 3

// Update loads the document, applies fn, and saves the result. When a
// concurrent writer bumped the version between load and save, the
// cycle is retried with a fresh copy. fn must be safe to call more
// than once.
func Update(repo *Repository, fn func(*Document) error) error {
	var err error
	for range updateRetries {
		var doc *Document
		doc, err = repo.Load()
		if err != nil {
			return err
		}
		if err = fn(doc); err != nil {
			return err
		}
		err = repo.Save(doc)
		if err == nil || !errors.Is(err, ErrConflict) {
			return err
		}
	}
	return err
}
