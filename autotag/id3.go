package autotag

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// readID3v2 is a minimal ID3v2.2/2.3/2.4 frame reader pulling out exactly
// the fields the original's id3 crate usage touched: album, artist,
// album_artist, genre, year, comment. There is no ID3-tag library anywhere
// in the example pack's dependency set, so this is hand-rolled against the
// public ID3v2 frame format (see DESIGN.md).
func readID3v2(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var header [10]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return nil, err
	}
	if string(header[0:3]) != "ID3" {
		return nil, errors.New("not an ID3v2 tag")
	}
	majorVersion := header[3]
	useSynchsafeFrameSize := majorVersion >= 4
	tagSize := decodeSynchsafe(header[6:10])

	body := make([]byte, tagSize)
	if _, err := io.ReadFull(f, body); err != nil {
		return nil, err
	}

	frameIDLen, frameHeaderLen := 4, 10
	if majorVersion == 2 {
		frameIDLen, frameHeaderLen = 3, 6
	}

	out := map[string]string{}
	pos := 0
	for pos+frameHeaderLen <= len(body) {
		id := string(body[pos : pos+frameIDLen])
		if id == "" || id[0] == 0 {
			break
		}

		var size int
		if majorVersion == 2 {
			size = int(body[pos+3])<<16 | int(body[pos+4])<<8 | int(body[pos+5])
		} else if useSynchsafeFrameSize {
			size = decodeSynchsafe(body[pos+4 : pos+8])
		} else {
			size = int(binary.BigEndian.Uint32(body[pos+4 : pos+8]))
		}
		pos += frameHeaderLen
		if pos+size > len(body) || size < 0 {
			break
		}
		frame := body[pos : pos+size]
		pos += size

		switch normalizeFrameID(id) {
		case "TALB":
			out["album"] = decodeText(frame)
		case "TPE1":
			out["artist"] = decodeText(frame)
		case "TPE2":
			out["album_artist"] = decodeText(frame)
		case "TCON":
			out["genre"] = decodeText(frame)
		case "TYER", "TDRC":
			out["year"] = firstFourDigits(decodeText(frame))
		case "COMM":
			out["comment"] = decodeComment(frame)
		}
	}
	return out, nil
}

// normalizeFrameID maps the 3-character ID3v2.2 frame ids onto their
// v2.3/2.4 equivalents so callers only match one set of names.
func normalizeFrameID(id string) string {
	switch id {
	case "TAL":
		return "TALB"
	case "TP1":
		return "TPE1"
	case "TP2":
		return "TPE2"
	case "TCO":
		return "TCON"
	case "TYE":
		return "TYER"
	case "COM":
		return "COMM"
	}
	return id
}

func decodeSynchsafe(b []byte) int {
	return int(b[0])<<21 | int(b[1])<<14 | int(b[2])<<7 | int(b[3])
}

// decodeText strips the leading text-encoding byte and decodes per ID3v2's
// four encodings, falling back to Latin-1 passthrough for anything it
// doesn't specifically handle.
func decodeText(frame []byte) string {
	if len(frame) == 0 {
		return ""
	}
	encoding := frame[0]
	payload := frame[1:]
	return decodeByEncoding(encoding, payload)
}

func decodeByEncoding(encoding byte, payload []byte) string {
	switch encoding {
	case 1: // UTF-16 with BOM
		return decodeUTF16(payload, true)
	case 2: // UTF-16BE, no BOM
		return decodeUTF16(payload, false)
	case 3: // UTF-8
		return trimNulls(string(payload))
	default: // ISO-8859-1
		return trimNulls(string(payload))
	}
}

func decodeUTF16(payload []byte, hasBOM bool) string {
	// Strip whole 2-byte NUL terminators only, so the zero high byte of a
	// little-endian final character is kept.
	for len(payload) >= 2 && payload[len(payload)-2] == 0 && payload[len(payload)-1] == 0 {
		payload = payload[:len(payload)-2]
	}
	if len(payload) < 2 {
		return ""
	}
	order := binary.BigEndian
	if hasBOM {
		if payload[0] == 0xFF && payload[1] == 0xFE {
			order = binary.LittleEndian
		}
		payload = payload[2:]
	}
	var sb strings.Builder
	for i := 0; i+1 < len(payload); i += 2 {
		sb.WriteRune(rune(order.Uint16(payload[i : i+2])))
	}
	return sb.String()
}

func trimNulls(s string) string {
	return strings.Trim(s, "\x00")
}

// decodeComment handles COMM's encoding+language+short-description+text
// layout, returning just the actual comment text.
func decodeComment(frame []byte) string {
	if len(frame) < 4 {
		return ""
	}
	encoding := frame[0]
	rest := frame[4:] // skip encoding byte + 3-byte language code

	switch encoding {
	case 1, 2:
		// Skip the null-terminated (UTF-16) short description.
		idx := findUTF16Null(rest)
		if idx < 0 {
			return decodeByEncoding(encoding, rest)
		}
		return decodeByEncoding(encoding, rest[idx+2:])
	default:
		idx := bytes.IndexByte(rest, 0)
		if idx < 0 {
			return decodeByEncoding(encoding, rest)
		}
		return decodeByEncoding(encoding, rest[idx+1:])
	}
}

func findUTF16Null(b []byte) int {
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			return i
		}
	}
	return -1
}

func firstFourDigits(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 4 {
		return s[:4]
	}
	return s
}
