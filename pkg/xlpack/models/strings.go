package models

// StringPool interns strings into an ordered, duplicate-free shared string list.
type StringPool struct {
	strings []string
	index   map[string]int
}

// NewStringPool returns an empty pool.
func NewStringPool() *StringPool {
	return &StringPool{index: make(map[string]int)}
}

// Intern returns the index of s, appending it on first use.
func (p *StringPool) Intern(s string) int {
	if i, ok := p.index[s]; ok {
		return i
	}
	i := len(p.strings)
	p.index[s] = i
	p.strings = append(p.strings, s)
	return i
}

// Strings returns the pool in index order.
func (p *StringPool) Strings() []string {
	return p.strings
}

// Len returns the number of unique strings.
func (p *StringPool) Len() int {
	return len(p.strings)
}
