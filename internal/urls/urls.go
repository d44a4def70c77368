package urls

// Documentation URLs for guides and troubleshooting.
// Project guides live at https://muurk.github.io/firmata/; protocol
// references point at the upstream protocol repository.

// ProtocolReference is the upstream wire protocol description: message
// framing, the seven bit payload convention, and the core command set.
const ProtocolReference = "https://github.com/firmata/protocol/blob/master/protocol.md"

// ProtocolRepository indexes the per-feature protocol documents
// (capability queries, extended analog, sampling interval, and the rest).
const ProtocolRepository = "https://github.com/firmata/protocol"

// StandardFirmata is the reference firmware most boards run; flashing it
// is the quickest way to get a board answering queries.
const StandardFirmata = "https://github.com/firmata/arduino"

// GettingStarted is the quick start guide for new users: flashing a board,
// finding its serial port, and running the first commands.
const GettingStarted = "https://muurk.github.io/firmata/getting-started/"

// TroubleshootingGuide provides solutions to common issues: permission
// errors on serial ports, boards that stay silent, and baud mismatches.
const TroubleshootingGuide = "https://muurk.github.io/firmata/troubleshooting/"

// NetworkBoards covers driving boards over TCP and WebSocket, including
// running the bridge in front of a USB-attached board.
const NetworkBoards = "https://muurk.github.io/firmata/network-boards/"
