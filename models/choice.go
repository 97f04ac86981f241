package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Game round numbers
const (
	RoundRocketDistance = 1
	RoundRangeGuess     = 2
	RoundDogFights      = 3
)

// Round-specific choice and answer domains
const (
	RocketCount    = 5    // rockets are numbered 1..5
	RangeMax       = 1000 // range guesses are 0..1000 meters
	RangeTolerance = 50   // inclusive distance for a winning range guess
)

// ChoiceKind discriminates the per-round choice variants
type ChoiceKind int

const (
	ChoiceKindUnknown ChoiceKind = iota
	ChoiceKindRocket
	ChoiceKindRange
	ChoiceKindFighter
)

// Choice is the tagged per-round wager choice: a rocket id for round 1,
// a range guess for round 2, a fighter name for round 3. It is resolved
// at the API boundary and stored in canonical text form on the bet.
type Choice struct {
	Kind    ChoiceKind
	Number  int    // rocket id or range guess
	Fighter string // fighter name
}

// RocketChoice builds a round-1 choice
func RocketChoice(id int) Choice {
	return Choice{Kind: ChoiceKindRocket, Number: id}
}

// RangeChoice builds a round-2 choice
func RangeChoice(meters int) Choice {
	return Choice{Kind: ChoiceKindRange, Number: meters}
}

// FighterChoice builds a round-3 choice
func FighterChoice(name string) Choice {
	return Choice{Kind: ChoiceKindFighter, Fighter: name}
}

// ParseChoice resolves a raw boundary value into the round's choice variant.
// Numeric rounds accept both numbers and their string form ("3" and 3 are the
// same rocket). Returns a ValidationError when the value is outside the
// round's domain.
func ParseChoice(round int, raw string) (Choice, error) {
	raw = strings.TrimSpace(raw)
	switch round {
	case RoundRocketDistance:
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 || id > RocketCount {
			return Choice{}, &ValidationError{Field: "choice", Reason: fmt.Sprintf("rocket must be 1-%d", RocketCount)}
		}
		return RocketChoice(id), nil
	case RoundRangeGuess:
		meters, err := strconv.Atoi(raw)
		if err != nil || meters < 0 || meters > RangeMax {
			return Choice{}, &ValidationError{Field: "choice", Reason: fmt.Sprintf("range must be 0-%d meters", RangeMax)}
		}
		return RangeChoice(meters), nil
	case RoundDogFights:
		if raw == "" {
			return Choice{}, &ValidationError{Field: "choice", Reason: "fighter name must not be empty"}
		}
		return FighterChoice(raw), nil
	default:
		return Choice{}, &ValidationError{Field: "round", Reason: fmt.Sprintf("unknown round %d", round)}
	}
}

// Encode returns the canonical text form stored on the bet record
func (c Choice) Encode() string {
	switch c.Kind {
	case ChoiceKindRocket, ChoiceKindRange:
		return strconv.Itoa(c.Number)
	case ChoiceKindFighter:
		return c.Fighter
	default:
		return ""
	}
}

// IsWinningChoice is the round classifier: it decides whether a stored choice
// beats the published answer under the round's comparison rule. Rounds 1 and 2
// compare numerically after integer coercion; a value that fails to coerce is
// never winning. Round 3 compares fighter names exactly (case and whitespace
// sensitive). Unknown rounds fail closed.
func IsWinningChoice(round int, choice, correctAnswer string) bool {
	switch round {
	case RoundRocketDistance:
		c, ok1 := coerceInt(choice)
		a, ok2 := coerceInt(correctAnswer)
		return ok1 && ok2 && c == a
	case RoundRangeGuess:
		c, ok1 := coerceInt(choice)
		a, ok2 := coerceInt(correctAnswer)
		if !ok1 || !ok2 {
			return false
		}
		d := c - a
		if d < 0 {
			d = -d
		}
		return d <= RangeTolerance
	case RoundDogFights:
		return choice != "" && choice == correctAnswer
	default:
		return false
	}
}

func coerceInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}
