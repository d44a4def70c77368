package protocol

// Kind identifies one message variant. Listener registration and dispatch key
// on the kind, never on the Go type, so user-defined messages participate in
// routing by minting their own Kind values. Kinds are plain strings to keep
// them stable across builds and readable in logs; collisions are the
// registering caller's problem, same as collisions in the command-byte space.
type Kind string

// Kinds of the built-in message catalog.
const (
	KindAnalog                Kind = "analog"
	KindDigital               Kind = "digital"
	KindProtocolVersion       Kind = "protocol_version"
	KindProtocolVersionQuery  Kind = "protocol_version_query"
	KindSetPinMode            Kind = "set_pin_mode"
	KindSetDigitalPinValue    Kind = "set_digital_pin_value"
	KindReportAnalog          Kind = "report_analog"
	KindReportDigital         Kind = "report_digital"
	KindSystemReset           Kind = "system_reset"
	KindReportFirmware        Kind = "report_firmware"
	KindStringData            Kind = "string_data"
	KindCapabilityQuery       Kind = "capability_query"
	KindCapabilityResponse    Kind = "capability_response"
	KindAnalogMappingQuery    Kind = "analog_mapping_query"
	KindAnalogMappingResponse Kind = "analog_mapping_response"
	KindPinStateQuery         Kind = "pin_state_query"
	KindPinStateResponse      Kind = "pin_state_response"
	KindExtendedAnalog        Kind = "extended_analog"
	KindSamplingInterval      Kind = "sampling_interval"
)
