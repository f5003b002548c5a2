package wavstream

import (
	"bytes"
	"encoding/binary"
	"math/bits"
)

type testChunk struct {
	id   string
	data []byte
}

// buildWAV assembles a RIFF/WAVE file from chunks, word aligned.
func buildWAV(chunks ...testChunk) []byte {
	var body bytes.Buffer

	for _, ch := range chunks {
		body.WriteString(ch.id)
		binary.Write(&body, binary.LittleEndian, uint32(len(ch.data)))
		body.Write(ch.data)

		if len(ch.data)%2 == 1 {
			body.WriteByte(0)
		}
	}

	var out bytes.Buffer

	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(4+body.Len()))
	out.WriteString("WAVE")
	out.Write(body.Bytes())

	return out.Bytes()
}

// buildAIFF assembles a FORM file of the given type ("AIFF" or "AIFC").
func buildAIFF(formType string, chunks ...testChunk) []byte {
	var body bytes.Buffer

	body.WriteString(formType)

	for _, ch := range chunks {
		body.WriteString(ch.id)
		binary.Write(&body, binary.BigEndian, uint32(len(ch.data)))
		body.Write(ch.data)

		if len(ch.data)%2 == 1 {
			body.WriteByte(0)
		}
	}

	var out bytes.Buffer

	out.WriteString("FORM")
	binary.Write(&out, binary.BigEndian, uint32(body.Len()))
	out.Write(body.Bytes())

	return out.Bytes()
}

func fmtChunkData(encoding, channels uint16, rate uint32, bitDepth uint16) []byte {
	var b bytes.Buffer

	binary.Write(&b, binary.LittleEndian, encoding)
	binary.Write(&b, binary.LittleEndian, channels)
	binary.Write(&b, binary.LittleEndian, rate)
	binary.Write(&b, binary.LittleEndian, rate*uint32(channels)*uint32(bitDepth/8))
	binary.Write(&b, binary.LittleEndian, channels*(bitDepth/8))
	binary.Write(&b, binary.LittleEndian, bitDepth)

	return b.Bytes()
}

type testLoop struct {
	loopType  uint32
	start     uint32
	end       uint32
	playCount uint32
}

func smplChunkData(loops ...testLoop) []byte {
	var b bytes.Buffer

	// manufacturer, product, sample period, MIDI unity note, MIDI pitch
	// fraction, SMPTE format, SMPTE offset
	for i := 0; i < 7; i++ {
		binary.Write(&b, binary.LittleEndian, uint32(0))
	}

	binary.Write(&b, binary.LittleEndian, uint32(len(loops)))
	binary.Write(&b, binary.LittleEndian, uint32(0)) // sampler data

	for i, loop := range loops {
		binary.Write(&b, binary.LittleEndian, uint32(i)) // cue point ID
		binary.Write(&b, binary.LittleEndian, loop.loopType)
		binary.Write(&b, binary.LittleEndian, loop.start)
		binary.Write(&b, binary.LittleEndian, loop.end)
		binary.Write(&b, binary.LittleEndian, uint32(0)) // fraction
		binary.Write(&b, binary.LittleEndian, loop.playCount)
	}

	return b.Bytes()
}

func listInfoChunkData(entries map[string]string) []byte {
	var b bytes.Buffer

	b.WriteString("INFO")

	for _, id := range []string{"INAM", "IART", "IALB", "BCPR"} {
		text, ok := entries[id]
		if !ok {
			continue
		}

		b.WriteString(id)
		binary.Write(&b, binary.LittleEndian, uint32(len(text)+1))
		b.WriteString(text)
		b.WriteByte(0)

		if (len(text)+1)%2 == 1 {
			b.WriteByte(0)
		}
	}

	return b.Bytes()
}

func commChunkData(channels uint16, numFrames uint32, bitDepth uint16, rate uint32, compression string) []byte {
	var b bytes.Buffer

	binary.Write(&b, binary.BigEndian, channels)
	binary.Write(&b, binary.BigEndian, numFrames)
	binary.Write(&b, binary.BigEndian, bitDepth)

	ext := extended80FromInt(rate)
	b.Write(ext[:])

	if compression != "" {
		b.WriteString(compression)
	}

	return b.Bytes()
}

func ssndChunkData(offset uint32, data []byte) []byte {
	var b bytes.Buffer

	binary.Write(&b, binary.BigEndian, offset)
	binary.Write(&b, binary.BigEndian, uint32(0)) // block size
	b.Write(make([]byte, offset))
	b.Write(data)

	return b.Bytes()
}

// extended80FromInt encodes an integer as an 80-bit IEEE-extended float.
func extended80FromInt(v uint32) [10]byte {
	var b [10]byte

	if v == 0 {
		return b
	}

	exp := 31 - bits.LeadingZeros32(v)
	b[0] = 0x40
	b[1] = byte(exp - 1)

	m := uint64(v) << (30 - exp)
	b[2] = byte(m >> 23)
	b[3] = byte(m >> 15)
	b[4] = byte(m >> 7)
	b[5] = byte(m&0x7F) << 1

	return b
}
