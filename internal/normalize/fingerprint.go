package normalize

import (
	"crypto/sha1" //nolint:gosec // fingerprint, not a security boundary
	"encoding/hex"
	"strconv"
	"strings"
)

// keyDelimiter joins normalised fields before hashing. Text normalisation
// strips it from field content, so it cannot occur inside a component.
const keyDelimiter = "\x1f"

// ingestedIDLength is the truncated hex length of digest-derived identities.
const ingestedIDLength = 14

// DedupKey derives the duplicate fingerprint for a posting: a SHA-1 digest
// over the normalised title, company, location and apply-URL. Postings that
// differ only in surface formatting collide on this key. It is a duplicate
// hint, never an identity: colliding records are counted, not merged.
func DedupKey(title, company, location, applyURL string) string {
	joined := strings.Join([]string{
		Text(title),
		Text(company),
		Text(location),
		URL(applyURL),
	}, keyDelimiter)
	sum := sha1.Sum([]byte(joined)) //nolint:gosec // fingerprint only
	return hex.EncodeToString(sum[:])
}

// ExternalPostingID builds the stable identity for a posting whose source
// supplies a source-native identity. Re-ingesting the same external identity
// updates the stored posting in place.
func ExternalPostingID(sourceID, externalID string) string {
	return sourceID + "::" + externalID
}

// IngestedPostingID derives an identity for a posting without a stable
// external identity. The scan marker makes the identity unique per scan:
// the source cannot guarantee stability, so each ingestion is tracked as a
// distinct posting and duplicates surface through the dedup key instead.
func IngestedPostingID(sourceID, title, description, company, location, applyURL string, index int, scanMarker string) string {
	joined := strings.Join([]string{
		sourceID, title, description, company, location, applyURL,
		strconv.Itoa(index), scanMarker,
	}, "|")
	sum := sha1.Sum([]byte(joined)) //nolint:gosec // fingerprint only
	return hex.EncodeToString(sum[:])[:ingestedIDLength]
}
