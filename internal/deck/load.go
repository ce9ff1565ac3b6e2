package deck

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound reports a missing catalog file.
	ErrNotFound = errors.New("catalog file not found")
	// ErrMalformed reports a catalog file without a usable "cards" list.
	ErrMalformed = errors.New("malformed catalog")
)

type catalogFile struct {
	Cards []Card `json:"cards"`
}

// Load reads both catalogs. The tarot catalog is mandatory: a missing or
// malformed file is a startup failure. The mind catalog is optional and
// degrades to an empty deck with a warning.
func Load(tarotPath, mindPath string) (*Catalog, error) {
	tarot, err := loadDeck(tarotPath)
	if err != nil {
		return nil, fmt.Errorf("tarot catalog %s: %w", tarotPath, err)
	}

	mind, err := loadDeck(mindPath)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Printf("mind catalog %s missing, continuing with an empty deck", mindPath)
			mind = Deck{}
		} else {
			return nil, fmt.Errorf("mind catalog %s: %w", mindPath, err)
		}
	}

	return &Catalog{Tarot: tarot, Mind: mind}, nil
}

func loadDeck(path string) (Deck, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var file catalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(file.Cards) == 0 {
		return nil, fmt.Errorf("%w: missing or empty \"cards\" list", ErrMalformed)
	}

	validate := validator.New()
	for i, card := range file.Cards {
		if err := validate.Struct(card); err != nil {
			return nil, fmt.Errorf("%w: card %d: %v", ErrMalformed, i, err)
		}
	}

	return Deck(file.Cards), nil
}
