// Package parserpool provides a pool of gnparser instances for
// concurrent scientific-name parsing. This is a pure package -
// parsing is computation, not I/O.
package parserpool

import (
	"runtime"

	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/gnames/gnparser"
	"github.com/gnames/gnparser/ent/parsed"
)

// Pool provides a pool of gnparser instances configured for the
// botanical nomenclatural code. It is safe for concurrent use.
type Pool interface {
	// Parse parses a scientific name string. It retrieves a parser
	// from the pool, parses the name, and returns the parser to the
	// pool.
	Parse(nameString string) parsed.Parsed

	// Stem returns the stemmed canonical form of a scientific name,
	// or an empty string when the name cannot be parsed.
	Stem(nameString string) string

	// Close shuts down the parser pool and releases resources.
	// After calling Close, the pool should not be used.
	Close()
}

type poolImpl struct {
	ch       chan gnparser.GNparser
	poolSize int
}

// NewPool creates a new parser pool with the specified number of
// workers. If jobsNum is 0, it defaults to runtime.NumCPU().
func NewPool(jobsNum int) Pool {
	poolSize := jobsNum
	if poolSize == 0 {
		poolSize = runtime.NumCPU()
	}

	cfg := gnparser.NewConfig(
		gnparser.OptCode(nomcode.Botanical),
	)
	ch := gnparser.NewPool(cfg, poolSize)

	return &poolImpl{ch: ch, poolSize: poolSize}
}

// Parse parses a scientific name string using a parser from the pool.
// Blocks if all parsers are busy.
func (p *poolImpl) Parse(nameString string) parsed.Parsed {
	parser := <-p.ch
	res := parser.ParseName(nameString)
	p.ch <- parser
	return res
}

// Stem returns the stemmed canonical form of a scientific name.
func (p *poolImpl) Stem(nameString string) string {
	res := p.Parse(nameString)
	if !res.Parsed || res.Canonical == nil {
		return ""
	}
	return res.Canonical.Stemmed
}

// Close shuts down the parser pool and drains remaining parsers.
func (p *poolImpl) Close() {
	if p.ch != nil {
		close(p.ch)
		for range p.ch {
		}
	}
}
