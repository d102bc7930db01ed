package domain

import (
	"fmt"
	"strings"
)

// Collection names a logical grouping of documents in the search engine
// together with the record-kind label stored in it.
type Collection struct {
	// Name is the index name, e.g. "oslo-terminology".
	Name string

	// Kind is the record-kind label, e.g. "vocabularies".
	Kind string
}

// String returns the "name/kind" form used in logs.
func (c Collection) String() string {
	return c.Name + "/" + c.Kind
}

// Well-known collections.
var (
	// TerminologyCollection holds vocabulary terms.
	TerminologyCollection = Collection{Name: "oslo-terminology", Kind: "vocabularies"}

	// ApplicationProfileCollection holds application-profile classes.
	ApplicationProfileCollection = Collection{Name: "oslo-application-profiles", Kind: "classes"}
)

// KnownCollections lists the collections bootstrapped at startup.
func KnownCollections() []Collection {
	return []Collection{TerminologyCollection, ApplicationProfileCollection}
}

// LookupCollection resolves a short alias or full index name.
func LookupCollection(name string) (Collection, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "terminology", TerminologyCollection.Name:
		return TerminologyCollection, nil
	case "application-profiles", "ap", ApplicationProfileCollection.Name:
		return ApplicationProfileCollection, nil
	default:
		return Collection{}, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
}
