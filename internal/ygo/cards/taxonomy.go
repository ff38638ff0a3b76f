package cards

import "strings"

// Category is the top-level card kind.
type Category int

const (
	CategoryMonster Category = iota
	CategorySpell
	CategoryTrap
	CategoryUnknown
)

func (c Category) String() string {
	switch c {
	case CategoryMonster:
		return "monster"
	case CategorySpell:
		return "spell"
	case CategoryTrap:
		return "trap"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Monster buckets in deck-list order. Extra-deck kinds come last.
const (
	MonsterNormal = iota
	MonsterEffect
	MonsterPendulum
	MonsterRitual
	MonsterFusion
	MonsterSynchro
	MonsterXyz
	MonsterLink
)

// Spell buckets in deck-list order.
const (
	SpellNormal = iota
	SpellQuickPlay
	SpellRitual
	SpellField
	SpellContinuous
	SpellEquip
	SpellOther
)

// Trap buckets in deck-list order.
const (
	TrapCounter = iota
	TrapContinuous
	TrapOther
)

// Classify returns the category and bucket of a card for structural
// ordering. A nil card is CategoryUnknown.
func Classify(m *Metadata) (Category, int) {
	if m == nil {
		return CategoryUnknown, 0
	}
	t := strings.ToLower(m.Type)
	race := strings.ToLower(m.Race)

	switch {
	case strings.Contains(t, "spell"):
		return CategorySpell, spellBucket(race)
	case strings.Contains(t, "trap"):
		return CategoryTrap, trapBucket(race)
	case strings.Contains(t, "monster") || strings.Contains(t, "token"):
		return CategoryMonster, monsterBucket(t)
	default:
		return CategoryUnknown, 0
	}
}

func monsterBucket(t string) int {
	switch {
	case strings.Contains(t, "link"):
		return MonsterLink
	case strings.Contains(t, "xyz"):
		return MonsterXyz
	case strings.Contains(t, "synchro"):
		return MonsterSynchro
	case strings.Contains(t, "fusion"):
		return MonsterFusion
	case strings.Contains(t, "ritual"):
		return MonsterRitual
	case strings.Contains(t, "pendulum"):
		return MonsterPendulum
	case strings.Contains(t, "normal"):
		return MonsterNormal
	default:
		return MonsterEffect
	}
}

func spellBucket(race string) int {
	switch race {
	case "normal":
		return SpellNormal
	case "quick-play":
		return SpellQuickPlay
	case "ritual":
		return SpellRitual
	case "field":
		return SpellField
	case "continuous":
		return SpellContinuous
	case "equip":
		return SpellEquip
	default:
		return SpellOther
	}
}

func trapBucket(race string) int {
	switch race {
	case "counter":
		return TrapCounter
	case "continuous":
		return TrapContinuous
	default:
		return TrapOther
	}
}

// Restricted reports whether a card is not legal under Genesys regardless of
// its points: Link and Pendulum monsters are banned outright.
func Restricted(m *Metadata) bool {
	if m == nil {
		return false
	}
	t := strings.ToLower(m.Type)
	frame := strings.ToLower(m.FrameType)
	return strings.Contains(t, "link") || strings.Contains(t, "pendulum") ||
		frame == "link" || strings.HasSuffix(frame, "_pendulum")
}
