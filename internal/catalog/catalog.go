// Package catalog holds the static anime reference data: items, their rarity
// tiers, localized names and quotes. It is loaded once at startup and is
// read-only afterwards, so a *Catalog is safe for concurrent use.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/playperu/animequiz/internal/animequiz"
)

//go:embed data/anime.json
var embedded []byte

// Points is the base XP awarded for a correct guess, by rarity tier.
var Points = map[animequiz.Rarity]int{
	animequiz.RarityCommon:    10,
	animequiz.RarityRare:      20,
	animequiz.RarityEpic:      30,
	animequiz.RarityLegendary: 50,
}

// PointsFor returns the base reward for r, or 0 for an unknown tier.
func PointsFor(r animequiz.Rarity) int {
	return Points[r]
}

type Catalog struct {
	items      []animequiz.Item
	byID       map[int]int
	withQuotes []animequiz.Item
}

type jsonQuote struct {
	Text    string `json:"text"`
	Speaker string `json:"speaker"`
}

type jsonItem struct {
	ID        int         `json:"id"`
	MalID     int         `json:"malId"`
	Name      string      `json:"name"`
	LocalName string      `json:"localName"`
	Rarity    string      `json:"rarity"`
	Quotes    []jsonQuote `json:"quotes"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(embedded))
}

// Open loads the catalog from path, or the embedded one when path is empty.
func Open(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a JSON array of items and validates it.
func Load(r io.Reader) (*Catalog, error) {
	var raw []jsonItem
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	items := make([]animequiz.Item, 0, len(raw))
	for _, ji := range raw {
		rarity, err := animequiz.ParseRarity(ji.Rarity)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", ji.ID, err)
		}
		it := animequiz.Item{
			ID:        ji.ID,
			MalID:     ji.MalID,
			Name:      ji.Name,
			LocalName: ji.LocalName,
			Rarity:    rarity,
		}
		for _, q := range ji.Quotes {
			it.Quotes = append(it.Quotes, animequiz.Quote{Text: q.Text, Speaker: q.Speaker})
		}
		items = append(items, it)
	}
	return New(items)
}

// New builds a catalog from items, keeping their order.
func New(items []animequiz.Item) (*Catalog, error) {
	if len(items) == 0 {
		return nil, errors.New("catalog is empty")
	}

	c := &Catalog{
		items: items,
		byID:  make(map[int]int, len(items)),
	}
	for i, it := range items {
		if it.Name == "" {
			return nil, fmt.Errorf("item %d: name is required", it.ID)
		}
		if _, dup := c.byID[it.ID]; dup {
			return nil, fmt.Errorf("item %d: duplicate id", it.ID)
		}
		for _, q := range it.Quotes {
			if q.Text == "" {
				return nil, fmt.Errorf("item %d: empty quote", it.ID)
			}
		}
		c.byID[it.ID] = i
		if len(it.Quotes) > 0 {
			c.withQuotes = append(c.withQuotes, it)
		}
	}
	return c, nil
}

// Items returns every item in catalog order. Callers must not modify it.
func (c *Catalog) Items() []animequiz.Item { return c.items }

// WithQuotes returns the items that have at least one quote.
func (c *Catalog) WithQuotes() []animequiz.Item { return c.withQuotes }

func (c *Catalog) Len() int { return len(c.items) }

func (c *Catalog) ByID(id int) (animequiz.Item, bool) {
	i, ok := c.byID[id]
	if !ok {
		return animequiz.Item{}, false
	}
	return c.items[i], true
}

// Pool returns the candidate items for mode. Image and random rounds draw
// from the whole catalog.
func (c *Catalog) Pool(mode animequiz.Mode) []animequiz.Item {
	if mode == animequiz.ModeQuote {
		return c.withQuotes
	}
	return c.items
}
