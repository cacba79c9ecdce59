package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/roach88/hexcore/internal/model"
)

// Domain prefixes for content hashes. The version suffix allows the
// manifest layout to change without colliding with older hashes.
const (
	DomainManifest = "hexcore/manifest/v1"
	DomainDeck     = "hexcore/deck/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DeckHash returns the content hash of a serialized deck.
func DeckHash(deck string) string {
	return hashWithDomain(DomainDeck, []byte(deck))
}

// Entry is one canonical ID with its sort key.
type Entry struct {
	ID  int    `json:"id"`
	Key string `json:"key"`
}

// Entries lists the canonical IDs of an assignment per kind
// ("assembly", "section", "material").
func Entries(c *model.Core, a Assignment) map[string][]Entry {
	out := map[string][]Entry{}
	for _, ref := range a.Assemblies {
		asm := c.Assembly(ref)
		out["assembly"] = append(out["assembly"], Entry{ID: asm.ID, Key: asm.Location})
	}
	for _, ref := range a.Sections {
		s := c.Section(ref)
		out["section"] = append(out["section"], Entry{ID: s.ID, Key: s.SortKey()})
	}
	for _, ref := range a.Materials {
		m := c.Material(ref)
		out["material"] = append(out["material"], Entry{ID: m.ID, Key: m.Name})
	}
	return out
}

// Manifest builds the canonical description of an ID-assigned, meshed core.
// Heights are written with 'g' formatting since floats are not canonical.
func Manifest(c *model.Core, a Assignment) (map[string]any, error) {
	if err := c.RequireCompleted(); err != nil {
		return nil, err
	}

	mesh := make([]any, len(c.Mesh))
	for i, h := range c.Mesh {
		mesh[i] = strconv.FormatFloat(h, 'g', -1, 64)
	}

	assemblies := make([]any, 0, len(a.Assemblies))
	for _, ref := range a.Assemblies {
		asm := c.Assembly(ref)
		stack := make([]any, 0, len(asm.Stack))
		for _, p := range asm.Stack {
			stack = append(stack, map[string]any{
				"section": c.Section(p.Section).ID,
				"lower":   strconv.FormatFloat(p.Bounds.Lower, 'g', -1, 64),
				"upper":   strconv.FormatFloat(p.Bounds.Upper, 'g', -1, 64),
			})
		}
		assemblies = append(assemblies, map[string]any{
			"id":       asm.ID,
			"location": asm.Location,
			"type":     asm.Type,
			"ring":     asm.Coord.Ring,
			"clock":    asm.Coord.Clock,
			"stack":    stack,
		})
	}

	sections := make([]any, 0, len(a.Sections))
	for _, ref := range a.Sections {
		s := c.Section(ref)
		entry := map[string]any{
			"id":     s.ID,
			"name":   s.Name,
			"method": string(s.Method),
		}
		if s.Method == model.EquivSupercell && c.HasSection(s.Partner) {
			entry["partner"] = c.Section(s.Partner).ID
		}
		sections = append(sections, entry)
	}

	materials := make([]any, 0, len(a.Materials))
	for _, ref := range a.Materials {
		m := c.Material(ref)
		materials = append(materials, map[string]any{"id": m.ID, "name": m.Name})
	}

	return map[string]any{
		"name":       c.Name,
		"rings":      c.Rings,
		"pitch":      strconv.FormatFloat(c.Pitch, 'g', -1, 64),
		"mesh":       mesh,
		"assemblies": assemblies,
		"sections":   sections,
		"materials":  materials,
	}, nil
}

// Fingerprint returns the content hash of the canonical manifest.
func Fingerprint(c *model.Core, a Assignment) (string, error) {
	manifest, err := Manifest(c, a)
	if err != nil {
		return "", err
	}
	data, err := MarshalCanonical(manifest)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainManifest, data), nil
}
