package wavstream

// MetaTag identifies a metadata tag kind carried by a container.
type MetaTag int

const (
	// MetaTitle is the track title (INAM, NAME, TIT2).
	MetaTitle MetaTag = iota
	// MetaArtist is the performing artist (IART, AUTH, TPE1).
	MetaArtist
	// MetaAlbum is the album name (IALB, TALB).
	MetaAlbum
	// MetaCopyright is the copyright notice (BCPR, "(c) ", TCOP).
	MetaCopyright
)

// String implements the Stringer interface.
func (t MetaTag) String() string {
	switch t {
	case MetaTitle:
		return "title"
	case MetaArtist:
		return "artist"
	case MetaAlbum:
		return "album"
	case MetaCopyright:
		return "copyright"
	default:
		return "unknown"
	}
}

// metaTags stores the optional tag strings extracted during parsing.
type metaTags struct {
	values map[MetaTag]string
}

func (m *metaTags) set(tag MetaTag, value string) {
	if value == "" {
		return
	}

	if m.values == nil {
		m.values = make(map[MetaTag]string)
	}

	m.values[tag] = value
}

func (m *metaTags) get(tag MetaTag) (string, bool) {
	v, ok := m.values[tag]
	return v, ok
}

func (m *metaTags) clear() {
	m.values = nil
}
