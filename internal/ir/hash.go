package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainPart   = "partforge/part/v1"
	DomainSketch = "partforge/sketch/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents domain/data
// boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PartHash computes the content hash of a Part snapshot: structure plus
// param values. Two structurally equal snapshots hash identically, which is
// what keys the rebuild-result cache.
func PartHash(p *Part) (string, error) {
	canonical, err := MarshalCanonical(p)
	if err != nil {
		return "", fmt.Errorf("PartHash: %w", err)
	}
	return hashWithDomain(DomainPart, canonical), nil
}

// SketchHash computes the content hash of a Sketch.
func SketchHash(s *Sketch) (string, error) {
	canonical, err := MarshalCanonical(s)
	if err != nil {
		return "", fmt.Errorf("SketchHash: %w", err)
	}
	return hashWithDomain(DomainSketch, canonical), nil
}

// MustPartHash is like PartHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustPartHash(p *Part) string {
	h, err := PartHash(p)
	if err != nil {
		panic(err)
	}
	return h
}
