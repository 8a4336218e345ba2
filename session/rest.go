package session

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/mediahub/vhub/protocol"
)

// REST path kinds matched by restRoute, case-insensitively and tolerant of a
// trailing slash (spec §4.2 "RESTful variants").
const (
	RESTDeviceList   = "getdevicelist"
	RESTDeviceInfo   = "getdeviceinfo"
	RESTDeviceStream = "getdevicestream"
)

func restRoute(req *http.Request) (string, url.Values, bool) {
	if req.Method != http.MethodGet {
		return "", nil, false
	}
	path := strings.ToLower(strings.TrimSuffix(req.URL.Path, "/"))
	path = strings.TrimPrefix(path, "/api/")
	switch path {
	case RESTDeviceList, RESTDeviceInfo, RESTDeviceStream:
		return path, req.URL.Query(), true
	default:
		return "", nil, false
	}
}

// synthesizeREST builds the equivalent JSON-bodied envelope for a RESTful
// request, so the dispatcher's handlers never need to know whether they were
// reached via a device-link message or a REST query string (spec Open
// Question (c)): the REST surface is sugar over the same dispatch path.
func synthesizeREST(kind string, query url.Values, cseq int) protocol.Envelope {
	switch kind {
	case RESTDeviceList:
		env := protocol.NewRequest(protocol.MsgCSDeviceListReq, cseq)
		env.EasyDarwin.Body.AppType = query.Get("AppType")
		env.EasyDarwin.Body.TerminalType = query.Get("TerminalType")
		return env
	case RESTDeviceInfo:
		env := protocol.NewRequest(protocol.MsgCSDeviceInfoReq, cseq)
		env.EasyDarwin.Body.Serial = query.Get("device")
		return env
	case RESTDeviceStream:
		env := protocol.NewRequest(protocol.MsgCSGetStreamReq, cseq)
		env.EasyDarwin.Body.Serial = query.Get("device")
		env.EasyDarwin.Body.Channel = query.Get("channel")
		env.EasyDarwin.Body.Protocol = query.Get("protocol")
		env.EasyDarwin.Body.Reserve = query.Get("reserve")
		return env
	default:
		return protocol.Envelope{}
	}
}
