package ygoprodeck

import (
	"errors"
	"fmt"

	"github.com/ramonehamilton/genesys-companion/internal/ygo/cards"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
)

// Card represents a card as returned by the YGOPRODeck card info endpoint.
type Card struct {
	ID        uint32      `json:"id"`
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	FrameType string      `json:"frameType"`
	Desc      string      `json:"desc"`
	Race      string      `json:"race"`
	Attribute string      `json:"attribute,omitempty"`
	Archetype string      `json:"archetype,omitempty"`
	Atk       *int        `json:"atk,omitempty"`
	Def       *int        `json:"def,omitempty"`
	Level     int         `json:"level,omitempty"`
	LinkVal   int         `json:"linkval,omitempty"`
	Scale     *int        `json:"scale,omitempty"`
	Images    []CardImage `json:"card_images,omitempty"`
}

// CardImage is one artwork of a card. Alternate artworks carry their own
// passcode in ID.
type CardImage struct {
	ID            uint32 `json:"id"`
	ImageURL      string `json:"image_url"`
	ImageURLSmall string `json:"image_url_small"`
	ImageURLCrop  string `json:"image_url_cropped"`
}

// CardInfoResponse is the envelope of the card info endpoint.
type CardInfoResponse struct {
	Data []Card `json:"data"`
}

// ToMetadata converts the API card into the metadata the deck checker reads.
func (c *Card) ToMetadata() *cards.Metadata {
	m := &cards.Metadata{
		ID:          deck.CardID(c.ID),
		Name:        c.Name,
		Type:        c.Type,
		FrameType:   c.FrameType,
		Race:        c.Race,
		Level:       c.Level,
		LinkValue:   c.LinkVal,
		Description: c.Desc,
	}
	if len(c.Images) > 0 {
		m.Image = c.Images[0].ImageURLSmall
		if m.Image == "" {
			m.Image = c.Images[0].ImageURL
		}
	}
	return m
}

// Passcodes returns the card's own ID plus the passcodes of its alternate
// artworks, without duplicates.
func (c *Card) Passcodes() []deck.CardID {
	ids := []deck.CardID{deck.CardID(c.ID)}
	for _, img := range c.Images {
		id := deck.CardID(img.ID)
		if id == deck.Unresolved || id == deck.CardID(c.ID) {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// APIError represents an error response from the YGOPRODeck API.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	return fmt.Sprintf("YGOPRODeck API error (HTTP %d): %s", e.Status, e.Message)
}

// NotFoundError is returned when a query matches no card. The API reports
// this as HTTP 400 with an error message rather than 404.
type NotFoundError struct {
	URL string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no card found: %s", e.URL)
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
