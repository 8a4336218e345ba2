package protocol

// MessageType identifies the kind of an EasyDarwin envelope. Values are
// arbitrary on the wire (they only need to match across hub and device
// firmware); what matters is that the dispatcher treats them as a closed,
// total enum rather than loose integer constants scattered across handlers.
type MessageType int

const (
	// MsgUnknown is the zero value; never sent, only ever the result of a
	// failed decode.
	MsgUnknown MessageType = 0

	// MsgDSRegisterReq is a device announcing itself to the hub.
	MsgDSRegisterReq MessageType = 1001
	// MsgSDRegisterAck is the hub's reply to a register request.
	MsgSDRegisterAck MessageType = 1002

	// MsgCSGetStreamReq is a client requesting a playback URL for a device channel.
	MsgCSGetStreamReq MessageType = 1101
	// MsgSCGetStreamAck is the hub's reply carrying the playback URL, or an error.
	MsgSCGetStreamAck MessageType = 1102

	// MsgSDPushStreamReq is the hub asking a device to push its stream to a relay.
	MsgSDPushStreamReq MessageType = 1201
	// MsgDSPushStreamAck is the device's reply, echoing the CSeq the hub assigned.
	MsgDSPushStreamAck MessageType = 1202

	// MsgCSFreeStreamReq is a client releasing a stream it previously requested.
	MsgCSFreeStreamReq MessageType = 1301
	// MsgSCFreeStreamAck is the hub's immediate reply to a free-stream request.
	MsgSCFreeStreamAck MessageType = 1302

	// MsgSDStreamStopReq is the hub telling a device to stop pushing a stream.
	MsgSDStreamStopReq MessageType = 1401
	// MsgDSStreamStopAck is the device's acknowledgement; carries no further action.
	MsgDSStreamStopAck MessageType = 1402

	// MsgCSDeviceListReq is a client enumerating registered devices.
	MsgCSDeviceListReq MessageType = 1501
	// MsgSCDeviceListAck is the hub's reply carrying the device list.
	MsgSCDeviceListAck MessageType = 1502

	// MsgCSDeviceInfoReq is a client asking for one device's channel detail.
	MsgCSDeviceInfoReq MessageType = 1601
	// MsgSCDeviceInfoAck is the hub's reply carrying channel/snapshot detail.
	MsgSCDeviceInfoAck MessageType = 1602

	// MsgDSPostSnapReq is a device uploading a snapshot image.
	MsgDSPostSnapReq MessageType = 1701
	// MsgSDPostSnapAck is the hub's reply acknowledging the upload.
	MsgSDPostSnapAck MessageType = 1702

	// MsgSCException is emitted when the dispatcher cannot determine the
	// request's message type at all, so no request-specific ack type applies.
	MsgSCException MessageType = 9999
)

var messageNames = map[MessageType]string{
	MsgUnknown:         "Unknown",
	MsgDSRegisterReq:   "DS_REGISTER_REQ",
	MsgSDRegisterAck:   "SD_REGISTER_ACK",
	MsgCSGetStreamReq:  "CS_GET_STREAM_REQ",
	MsgSCGetStreamAck:  "SC_GET_STREAM_ACK",
	MsgSDPushStreamReq: "SD_PUSH_STREAM_REQ",
	MsgDSPushStreamAck: "DS_PUSH_STREAM_ACK",
	MsgCSFreeStreamReq: "CS_FREE_STREAM_REQ",
	MsgSCFreeStreamAck: "SC_FREE_STREAM_ACK",
	MsgSDStreamStopReq: "SD_STREAM_STOP_REQ",
	MsgDSStreamStopAck: "DS_STREAM_STOP_ACK",
	MsgCSDeviceListReq: "CS_DEVICE_LIST_REQ",
	MsgSCDeviceListAck: "SC_DEVICE_LIST_ACK",
	MsgCSDeviceInfoReq: "CS_DEVICE_INFO_REQ",
	MsgSCDeviceInfoAck: "SC_DEVICE_INFO_ACK",
	MsgDSPostSnapReq:   "DS_POST_SNAP_REQ",
	MsgSDPostSnapAck:   "SD_POST_SNAP_ACK",
	MsgSCException:     "SC_EXCEPTION",
}

func (mt MessageType) String() string {
	if name, ok := messageNames[mt]; ok {
		return name
	}
	return "UNKNOWN"
}

// AckFor returns the response message type paired with a request type, and
// whether the request type is recognized at all. Unrecognized types map to
// MsgSCException, matching the fallback in the dispatcher (spec §4.3.9).
func AckFor(req MessageType) (MessageType, bool) {
	switch req {
	case MsgDSRegisterReq:
		return MsgSDRegisterAck, true
	case MsgCSGetStreamReq:
		return MsgSCGetStreamAck, true
	case MsgDSPushStreamAck:
		// The device's ack starts no new exchange; the hub's reply to it is a
		// plain OK envelope of the same message type.
		return MsgDSPushStreamAck, true
	case MsgCSFreeStreamReq:
		return MsgSCFreeStreamAck, true
	case MsgDSStreamStopAck:
		return MsgDSStreamStopAck, true
	case MsgCSDeviceListReq:
		return MsgSCDeviceListAck, true
	case MsgCSDeviceInfoReq:
		return MsgSCDeviceInfoAck, true
	case MsgDSPostSnapReq:
		return MsgSDPostSnapAck, true
	default:
		return MsgSCException, false
	}
}
