package checker

import (
	"sort"
	"sync"

	"github.com/mvp-joe/modelguard/internal/scan"
)

// DiagnosticStore maps a document identity to its current findings. Each
// Replace fully overwrites the prior set for that document.
type DiagnosticStore struct {
	mu   sync.RWMutex
	docs map[string][]scan.Finding
}

// NewDiagnosticStore creates an empty store.
func NewDiagnosticStore() *DiagnosticStore {
	return &DiagnosticStore{docs: make(map[string][]scan.Finding)}
}

// Replace sets the findings for doc. An empty set removes the document.
func (s *DiagnosticStore) Replace(doc string, findings []scan.Finding) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(findings) == 0 {
		delete(s.docs, doc)
		return
	}
	s.docs[doc] = append([]scan.Finding(nil), findings...)
}

// Get returns the findings for doc.
func (s *DiagnosticStore) Get(doc string) ([]scan.Finding, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	findings, ok := s.docs[doc]
	if !ok {
		return nil, false
	}
	return append([]scan.Finding(nil), findings...), true
}

// Delete drops doc from the store.
func (s *DiagnosticStore) Delete(doc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, doc)
}

// Documents returns the documents that currently have findings, sorted.
func (s *DiagnosticStore) Documents() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]string, 0, len(s.docs))
	for doc := range s.docs {
		docs = append(docs, doc)
	}
	sort.Strings(docs)
	return docs
}

// Total returns the number of findings across all documents.
func (s *DiagnosticStore) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, findings := range s.docs {
		total += len(findings)
	}
	return total
}
