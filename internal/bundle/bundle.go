// Package bundle wraps output records into a FHIR transaction bundle.
package bundle

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/cdf2fhir/internal/record"
)

const (
	DefaultMethod     = "POST"
	DefaultRequestURL = "http://localhost:8080/fhir"
)

// Namespace seeds the name-based UUIDs derived from resource ids. Changing it
// changes every fullUrl this tool has ever produced.
var Namespace = uuid.MustParse("8d0e4e0c-6b8f-5a4e-9d3b-2f1c7a5e9b40")

var ErrMissingRecordIdentifier = errors.New("record has no 'id' property")

// UUID returns the deterministic UUID for a resource id.
func UUID(id string) uuid.UUID {
	return uuid.NewSHA1(Namespace, []byte(id))
}

// URN returns the urn:uuid reference for a resource id.
func URN(id string) string {
	return UUID(id).URN()
}

type Request struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

type Entry struct {
	FullURL  string        `json:"fullUrl"`
	Request  Request       `json:"request"`
	Resource record.Record `json:"resource"`
}

type Bundle struct {
	ResourceType string  `json:"resourceType"`
	Type         string  `json:"type"`
	Entry        []Entry `json:"entry"`
}

// Assembler builds transaction bundles.
type Assembler struct {
	request Request
}

type Option func(*Assembler)

// WithRequestURL sets the url every bundle entry's request carries.
func WithRequestURL(url string) Option {
	return func(a *Assembler) {
		a.request.URL = url
	}
}

func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{request: Request{Method: DefaultMethod, URL: DefaultRequestURL}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble wraps records, in order, into a transaction bundle. Every record
// must carry an id.
func (a *Assembler) Assemble(records []record.Record) (*Bundle, error) {
	b := &Bundle{
		ResourceType: "Bundle",
		Type:         "transaction",
		Entry:        make([]Entry, 0, len(records)),
	}
	for i, r := range records {
		id, ok := r.ID()
		if !ok {
			return nil, fmt.Errorf("%w: record %d (resourceType %v)", ErrMissingRecordIdentifier, i, r["resourceType"])
		}
		b.Entry = append(b.Entry, Entry{
			FullURL:  URN(id),
			Request:  a.request,
			Resource: r,
		})
	}
	return b, nil
}

// Assemble wraps records with the default request settings.
func Assemble(records []record.Record) (*Bundle, error) {
	return NewAssembler().Assemble(records)
}
