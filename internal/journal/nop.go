package journal

import "context"

// NopJournal remembers nothing; every image is processed on each run.
type NopJournal struct{}

func NewNopJournal() *NopJournal { return &NopJournal{} }

func (NopJournal) Get(context.Context, string) (Entry, bool, error) { return Entry{}, false, nil }
func (NopJournal) Record(context.Context, Entry) error              { return nil }
func (NopJournal) Close() error                                     { return nil }
