package network

// client -> server
const (
	MsgTypeHeartbeat       = 1
	MsgTypeStart           = 101
	MsgTypeReset           = 102
	MsgTypeSetDifficulty   = 103
	MsgTypeInputColor      = 201
	MsgTypeKeyPress        = 202
	MsgTypeAudioStatus     = 203
	MsgTypeSnapshotRequest = 301
)

// server -> client
const (
	MsgTypeScore        = 401
	MsgTypeRound        = 402
	MsgTypeMessage      = 403
	MsgTypeControls     = 404
	MsgTypeColorButtons = 405
	MsgTypeFlash        = 406
	MsgTypeTone         = 407
	MsgTypeSnapshot     = 408
	MsgTypeError        = 409
	MsgTypeWelcome      = 410
)
