package wavstream

// ITU-T G.711 companding expansion. Only the decode direction is needed:
// compressed 8-bit log-PCM samples expand to 16-bit linear PCM.

const muLawBias = 0x84

func decodeMuLawSample(sample byte) int16 {
	value := ^sample
	sign := value & 0x80
	exponent := (value >> 4) & 0x07
	mantissa := value & 0x0F

	decoded := ((int(mantissa) << 3) + muLawBias) << exponent
	if sign != 0 {
		return int16(muLawBias - decoded)
	}

	return int16(decoded - muLawBias)
}

func decodeALawSample(sample byte) int16 {
	value := sample ^ 0x55
	sign := value & 0x80
	exponent := (value >> 4) & 0x07
	mantissa := value & 0x0F

	decoded := int(mantissa) << 4
	switch exponent {
	case 0:
		decoded += 8
	case 1:
		decoded += 0x108
	default:
		decoded += 0x108
		decoded <<= exponent - 1
	}

	// The sign bit set means positive in A-law.
	if sign == 0 {
		decoded = -decoded
	}

	return int16(decoded)
}
