// Package gateway provides an HTTP client for the AIO gateway's command API.
//
// The gateway exposes a single endpoint, /command, selected by the XC_FNC
// query parameter. Two functions are used by the bridge:
//
//	GET http://<ip>/command?XC_FNC=Send2&code=<code>   send an IR code
//	GET http://<ip>/command?XC_FNC=getstates           read all system variables
//
// # Usage Example
//
//	client := gateway.NewClient()
//
//	records, err := client.GetStates(ctx, "10.0.0.5")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := client.SendCode(ctx, "10.0.0.5", "19082600000100260C0AAA"); err != nil {
//	    if gateway.IsRejection(err) {
//	        log.Printf("gateway refused the code")
//	    }
//	}
//
// # Error Handling
//
// Every failure is a *DeviceError. Its Type tells the three classes apart:
// transport failures (socket or HTTP status), rejections (the gateway answered
// without its success marker) and decode failures (the answer carried the
// marker but the payload could not be parsed).
//
// # Timeouts
//
// NewClient configures no request timeout. Requests end when the gateway
// answers or the context is cancelled. SetTimeout adds one.
package gateway
