package kodi

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math/rand"
	"net"
	"time"

	"screensaverturnoff/internal/logger"
)

// EventServer packet types and constants, see xbmcclient.h in the Kodi tree.
const (
	packetHELO   uint16 = 0x01
	packetBYE    uint16 = 0x02
	packetACTION uint16 = 0x0A

	actionExecBuiltin byte = 0x01
	iconNone          byte = 0x00

	headerSize     = 32
	maxDeviceName  = 128
	protocolMajor  = 2
	protocolMinor  = 0
	eventServerSig = "XBMC"
)

// EventServer runs Kodi built-ins through the UDP EventServer.
// Delivery is fire-and-forget: Kodi sends no reply, so success of the
// built-in itself is never observable.
//
// Datagrams always go direct to addr. The configured SOCKS proxy only
// carries the JSON-RPC and websocket connections, since x/net/proxy has no
// UDP support.
type EventServer struct {
	addr       string
	deviceName string
	uid        uint32
	timeout    time.Duration
	dial       func(ctx context.Context, network, addr string) (net.Conn, error)
}

// NewEventServer creates a client for the EventServer at addr (host:port).
func NewEventServer(addr, deviceName string) *EventServer {
	return &EventServer{
		addr:       addr,
		deviceName: deviceName,
		uid:        rand.Uint32(),
		timeout:    2 * time.Second,
		dial:       (&net.Dialer{}).DialContext,
	}
}

// RunBuiltin sends HELO, ACTION(builtin) and BYE. The wait flag cannot be
// honored over UDP and is only logged.
func (s *EventServer) RunBuiltin(ctx context.Context, name string, wait bool) error {
	log := logger.WithComponent("kodi-eventserver")

	conn, err := s.dial(ctx, "udp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to reach EventServer at %s: %w", s.addr, err)
	}
	defer conn.Close()
	if err := conn.SetWriteDeadline(time.Now().Add(s.timeout)); err != nil {
		return fmt.Errorf("failed to set EventServer write deadline: %w", err)
	}

	packets := [][]byte{
		encodePacket(packetHELO, s.uid, heloPayload(s.deviceName)),
		encodePacket(packetACTION, s.uid, actionPayload(name)),
		encodePacket(packetBYE, s.uid, nil),
	}
	for _, p := range packets {
		if _, err := conn.Write(p); err != nil {
			return fmt.Errorf("failed to send builtin %q: %w", name, err)
		}
	}

	log.Debug().Str("builtin", name).Bool("wait", wait).Msg("Sent builtin to EventServer")
	return nil
}

// encodePacket builds a single-datagram EventServer packet.
func encodePacket(packetType uint16, uid uint32, payload []byte) []byte {
	var b bytes.Buffer
	b.Grow(headerSize + len(payload))

	b.WriteString(eventServerSig)
	b.WriteByte(protocolMajor)
	b.WriteByte(protocolMinor)
	binary.Write(&b, binary.BigEndian, packetType)
	binary.Write(&b, binary.BigEndian, uint32(1)) // sequence number
	binary.Write(&b, binary.BigEndian, uint32(1)) // total packets
	binary.Write(&b, binary.BigEndian, uint16(len(payload)))
	binary.Write(&b, binary.BigEndian, uid)
	b.Write(make([]byte, 10)) // reserved

	b.Write(payload)
	return b.Bytes()
}

func heloPayload(deviceName string) []byte {
	if len(deviceName) > maxDeviceName {
		deviceName = deviceName[:maxDeviceName]
	}
	var b bytes.Buffer
	b.WriteString(deviceName)
	b.WriteByte(0)
	b.WriteByte(iconNone)
	b.Write(make([]byte, 2+4+4)) // port, reserved1, reserved2
	return b.Bytes()
}

func actionPayload(builtin string) []byte {
	p := make([]byte, 0, len(builtin)+2)
	p = append(p, actionExecBuiltin)
	p = append(p, builtin...)
	return append(p, 0)
}
