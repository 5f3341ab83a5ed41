package monitor

import (
	"strconv"
	"strings"

	"github.com/polypheny/adaptive-router/router/routing"
)

// splitSample parses one stored sample value "<PS-key>|<nanos>" back into
// its PS key and nanosecond count.
func splitSample(entry string) (psKey string, nanos int64, ok bool) {
	idx := strings.LastIndexByte(entry, '|')
	if idx < 0 {
		return "", 0, false
	}
	n, err := strconv.ParseInt(entry[idx+1:], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return entry[:idx], n, true
}

// parsePSKey parses a PS.Key()-rendered string, e.g. "[1,3]", back into a
// routing.PS.
func parsePSKey(key string) (routing.PS, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(key, "["), "]")
	if inner == "" {
		return routing.PS{}, nil
	}
	parts := strings.Split(inner, ",")
	aids := make([]routing.AID, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		aids = append(aids, routing.AID(n))
	}
	return routing.NewPSFromSlice(aids), nil
}
