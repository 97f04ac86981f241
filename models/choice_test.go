package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsWinningChoice_RocketDistance(t *testing.T) {
	t.Run("exact match wins", func(t *testing.T) {
		assert.True(t, IsWinningChoice(RoundRocketDistance, "3", "3"))
	})

	t.Run("mismatch loses", func(t *testing.T) {
		assert.False(t, IsWinningChoice(RoundRocketDistance, "3", "4"))
	})

	t.Run("whitespace around numbers is coerced", func(t *testing.T) {
		assert.True(t, IsWinningChoice(RoundRocketDistance, " 3 ", "3"))
	})

	t.Run("non-numeric choice never wins", func(t *testing.T) {
		assert.False(t, IsWinningChoice(RoundRocketDistance, "rocket", "3"))
		assert.False(t, IsWinningChoice(RoundRocketDistance, "", "3"))
	})

	t.Run("non-numeric answer never wins", func(t *testing.T) {
		assert.False(t, IsWinningChoice(RoundRocketDistance, "3", "three"))
	})
}

func TestIsWinningChoice_RangeGuess(t *testing.T) {
	t.Run("distance of exactly 50 wins", func(t *testing.T) {
		assert.True(t, IsWinningChoice(RoundRangeGuess, "450", "500"))
		assert.True(t, IsWinningChoice(RoundRangeGuess, "550", "500"))
	})

	t.Run("distance of 51 loses", func(t *testing.T) {
		assert.False(t, IsWinningChoice(RoundRangeGuess, "450", "501"))
		assert.False(t, IsWinningChoice(RoundRangeGuess, "552", "501"))
	})

	t.Run("exact guess wins", func(t *testing.T) {
		assert.True(t, IsWinningChoice(RoundRangeGuess, "500", "500"))
	})

	t.Run("malformed values never win", func(t *testing.T) {
		assert.False(t, IsWinningChoice(RoundRangeGuess, "about 500", "500"))
		assert.False(t, IsWinningChoice(RoundRangeGuess, "500", ""))
	})
}

func TestIsWinningChoice_DogFights(t *testing.T) {
	t.Run("exact name wins", func(t *testing.T) {
		assert.True(t, IsWinningChoice(RoundDogFights, "Husky", "Husky"))
	})

	// Fighter names are matched exactly: case and whitespace both count.
	t.Run("case differences lose", func(t *testing.T) {
		assert.False(t, IsWinningChoice(RoundDogFights, "Husky", "husky"))
	})

	t.Run("whitespace differences lose", func(t *testing.T) {
		assert.False(t, IsWinningChoice(RoundDogFights, "Husky ", "Husky"))
	})

	t.Run("empty choice never wins", func(t *testing.T) {
		assert.False(t, IsWinningChoice(RoundDogFights, "", ""))
	})
}

func TestIsWinningChoice_UnknownRound(t *testing.T) {
	assert.False(t, IsWinningChoice(0, "3", "3"))
	assert.False(t, IsWinningChoice(4, "Husky", "Husky"))
	assert.False(t, IsWinningChoice(-1, "3", "3"))
}

func TestParseChoice(t *testing.T) {
	t.Run("rocket ids 1-5", func(t *testing.T) {
		c, err := ParseChoice(RoundRocketDistance, "3")
		require.NoError(t, err)
		assert.Equal(t, ChoiceKindRocket, c.Kind)
		assert.Equal(t, "3", c.Encode())

		_, err = ParseChoice(RoundRocketDistance, "6")
		assert.Error(t, err)
		assert.True(t, IsValidation(err))

		_, err = ParseChoice(RoundRocketDistance, "0")
		assert.Error(t, err)
	})

	t.Run("string and numeric forms encode identically", func(t *testing.T) {
		parsed, err := ParseChoice(RoundRocketDistance, " 3")
		require.NoError(t, err)
		assert.Equal(t, RocketChoice(3).Encode(), parsed.Encode())
	})

	t.Run("range 0-1000", func(t *testing.T) {
		c, err := ParseChoice(RoundRangeGuess, "1000")
		require.NoError(t, err)
		assert.Equal(t, "1000", c.Encode())

		_, err = ParseChoice(RoundRangeGuess, "1001")
		assert.Error(t, err)

		_, err = ParseChoice(RoundRangeGuess, "-1")
		assert.Error(t, err)
	})

	t.Run("fighter name must be non-empty", func(t *testing.T) {
		c, err := ParseChoice(RoundDogFights, "German Shepherd")
		require.NoError(t, err)
		assert.Equal(t, "German Shepherd", c.Encode())

		_, err = ParseChoice(RoundDogFights, "   ")
		assert.Error(t, err)
	})

	t.Run("unknown round rejected", func(t *testing.T) {
		_, err := ParseChoice(7, "3")
		assert.Error(t, err)
		assert.True(t, IsValidation(err))
	})
}
