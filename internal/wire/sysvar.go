package wire

import (
	"encoding/json"
	"strings"
)

// SuccessMarker prefixes every successful HTTP answer from the gateway
const SuccessMarker = "{XC_SUC}"

// SysVarRecord is one entry of the bulk system variable answer
type SysVarRecord struct {
	Adr   string
	State string
}

type sysVarEntry struct {
	Adr   *string `json:"adr"`
	State *string `json:"state"`
}

// HasSuccessMarker reports whether an HTTP answer starts with {XC_SUC}
func HasSuccessMarker(body []byte) bool {
	return strings.HasPrefix(string(body), SuccessMarker)
}

// IsCommandSuccess reports whether a Send2 answer is exactly {XC_SUC}
func IsCommandSuccess(body []byte) bool {
	return string(body) == SuccessMarker
}

// ParseSysVarList decodes the answer of the getstates query. Entries without
// string adr and state fields fail the whole payload.
func ParseSysVarList(raw []byte) ([]SysVarRecord, error) {
	if !HasSuccessMarker(raw) {
		return nil, decodeErr(FormatSysVars, "missing "+SuccessMarker+" prefix", raw, nil)
	}

	var entries []sysVarEntry
	if err := json.Unmarshal(raw[len(SuccessMarker):], &entries); err != nil {
		return nil, decodeErr(FormatSysVars, "json format invalid", raw, err)
	}

	records := make([]SysVarRecord, 0, len(entries))
	for _, e := range entries {
		if e.Adr == nil || e.State == nil {
			return nil, decodeErr(FormatSysVars, "json format not known", raw, nil)
		}
		records = append(records, SysVarRecord{Adr: *e.Adr, State: *e.State})
	}
	return records, nil
}
