package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint derives the dedup key for a deal from its company name and
// round type. Two emails pitching the same company and round collapse to
// the same fingerprint regardless of casing or surrounding whitespace. An
// unknown round is normalized to "unknown" so that re-sends without round
// information still dedup against each other.
func Fingerprint(companyName, roundType string) string {
	if roundType == "" {
		roundType = "unknown"
	}
	key := strings.ToLower(strings.TrimSpace(companyName + ":" + roundType))
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
