package character

import (
	"regexp"
	"strings"
)

// QuoteBullet prefixes every kept line of a Quotes block.
const QuoteBullet = "•"

const (
	fieldRace     = "race"
	fieldGreeting = "greeting"
	fieldContext  = "context"
	fieldQuotes   = "quotes"
)

var (
	nameLine  = regexp.MustCompile(`^Name:\s+(.+)$`)
	fieldLine = regexp.MustCompile(`(?i)^(Race|Greeting|Context|Quotes):(\s*(.*))?$`)
)

// draft is the record being filled while its block is open.
type draft struct {
	name   string
	fields map[string]string
}

type extractor struct {
	current *draft
	field   string
	quotes  []string
	out     []Record
}

// Extract parses character blocks out of the ordered page texts. Pages are read
// as one stream of lines, so a block may span a page break.
func Extract(pages []string) *Registry {
	e := &extractor{}
	for _, page := range pages {
		for _, line := range strings.Split(page, "\n") {
			e.feed(line)
		}
	}
	e.commit()
	return NewRegistry(e.out)
}

func (e *extractor) feed(raw string) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}

	if m := nameLine.FindStringSubmatch(line); m != nil {
		e.commit()
		e.current = &draft{name: strings.TrimSpace(m[1]), fields: map[string]string{}}
		e.field = ""
		return
	}

	if m := fieldLine.FindStringSubmatch(line); m != nil {
		e.field = strings.ToLower(m[1])
		if e.field == fieldQuotes {
			e.quotes = nil
			return
		}
		if e.current != nil {
			e.current.fields[e.field] = strings.TrimSpace(m[3])
		}
		return
	}

	if e.current == nil || e.field == "" {
		return
	}

	if e.field == fieldQuotes {
		if strings.HasPrefix(line, QuoteBullet) {
			e.quotes = append(e.quotes, strings.TrimSpace(strings.TrimPrefix(line, QuoteBullet)))
		}
		return
	}

	if existing := e.current.fields[e.field]; existing != "" {
		e.current.fields[e.field] = existing + " " + line
	} else {
		e.current.fields[e.field] = line
	}
}

func (e *extractor) commit() {
	if e.current == nil {
		return
	}

	quotes := e.quotes
	if quotes == nil {
		quotes = []string{}
	}

	e.out = append(e.out, Record{
		Name:     e.current.name,
		Race:     strings.TrimSpace(e.current.fields[fieldRace]),
		Greeting: strings.TrimSpace(e.current.fields[fieldGreeting]),
		Context:  strings.TrimSpace(e.current.fields[fieldContext]),
		Quotes:   quotes,
	})
	e.current = nil
	e.quotes = nil
}
