package versatiles

// TargetCompression describes the set of codecs a consumer is willing to
// accept, and whether the negotiator should prefer the best-ranked
// acceptable codec over leaving an already-acceptable input alone.
type TargetCompression struct {
	Allowed         map[TileCompression]bool
	BestCompression bool
}

// NewTargetCompression builds a TargetCompression accepting exactly the
// given codecs.
func NewTargetCompression(best bool, codecs ...TileCompression) TargetCompression {
	allowed := make(map[TileCompression]bool, len(codecs))
	for _, c := range codecs {
		allowed[c] = true
	}
	return TargetCompression{Allowed: allowed, BestCompression: best}
}

// preferenceOrder is the negotiator's fixed codec ranking: brotli first,
// then gzip, then uncompressed, per spec.md §4.8.
var preferenceOrder = []TileCompression{Brotli, Gzip, Uncompressed}

// Negotiate picks the cheapest path from the blob's current compression to
// a codec in target's acceptable set, per spec.md §4.8's policy.
func Negotiate(b Blob, current TileCompression, target TargetCompression) (Blob, TileCompression, error) {
	if len(target.Allowed) == 0 {
		return Blob{}, CompressionUnknown, &NoCompressionAllowedError{}
	}

	if !target.BestCompression && target.Allowed[current] {
		return b, current, nil
	}

	var chosen TileCompression
	found := false
	for _, c := range preferenceOrder {
		if target.Allowed[c] {
			chosen = c
			found = true
			break
		}
	}
	if !found {
		return Blob{}, CompressionUnknown, &NoCompressionAllowedError{}
	}

	if chosen == current {
		return b, current, nil
	}

	uncompressed, err := Decompress(b, current)
	if err != nil {
		return Blob{}, CompressionUnknown, err
	}

	recompressed, err := Compress(uncompressed, chosen)
	if err != nil {
		return Blob{}, CompressionUnknown, err
	}
	return recompressed, chosen, nil
}
