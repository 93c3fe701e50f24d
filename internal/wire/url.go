package wire

import "net/url"

// Gateway HTTP functions
const (
	FuncSend      = "Send2"
	FuncGetStates = "getstates"
)

// CommandURL builds the Send2 request for an IR code. The code is query
// escaped so reserved characters survive the round trip.
func CommandURL(ip, code string) string {
	return "http://" + ip + "/command?XC_FNC=" + FuncSend + "&code=" + url.QueryEscape(code)
}

// SysVarURL builds the bulk system variable query
func SysVarURL(ip string) string {
	return "http://" + ip + "/command?XC_FNC=" + FuncGetStates
}
