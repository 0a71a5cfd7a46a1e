package graphdb

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// Statement is one cypher call observed by a MemoryClient.
type Statement struct {
	Query  string
	Params map[string]any
}

// MemoryClient records statements instead of running them. Reads are answered
// from a queue of canned results.
type MemoryClient struct {
	mu           sync.Mutex
	writes       []Statement
	reads        []Statement
	readResults  []Result
	err          error
	failOn       func(Statement) error
	connectivity error
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// WithError makes every subsequent call fail with err.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// FailWhen makes a write fail whenever fn returns a non-nil error for it.
func (m *MemoryClient) FailWhen(fn func(Statement) error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn = fn
	return m
}

// WithConnectivityError forces VerifyConnectivity to return err.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

// PushReadResult queues a result for the next Read.
func (m *MemoryClient) PushReadResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readResults = append(m.readResults, res)
}

func (m *MemoryClient) Write(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}
	stmt := Statement{Query: cypher, Params: maps.Clone(params)}
	if m.failOn != nil {
		if err := m.failOn(stmt); err != nil {
			return Result{}, err
		}
	}
	m.writes = append(m.writes, stmt)
	return Result{}, nil
}

func (m *MemoryClient) Read(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}
	m.reads = append(m.reads, Statement{Query: cypher, Params: maps.Clone(params)})

	if len(m.readResults) == 0 {
		return Result{}, nil
	}
	res := m.readResults[0]
	m.readResults = m.readResults[1:]
	return res, nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	return nil
}

// Writes returns a snapshot of recorded writes in call order.
func (m *MemoryClient) Writes() []Statement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.writes)
}

// Reads returns a snapshot of recorded reads in call order.
func (m *MemoryClient) Reads() []Statement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.reads)
}
