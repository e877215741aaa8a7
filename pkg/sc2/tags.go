package sc2

// Tag is a four-character ASCII chunk identifier.
type Tag string

const (
	TagName        Tag = "CNAM"
	TagMisc        Tag = "MISC"
	TagAltitude    Tag = "ALTM"
	TagPicture     Tag = "PICT"
	TagTerrain     Tag = "XTER"
	TagBuilding    Tag = "XBLD"
	TagZone        Tag = "XZON"
	TagUnderground Tag = "XUND"
	TagText        Tag = "XTXT"
	TagLabels      Tag = "XLAB"
	TagMicrosim    Tag = "XMIC"
	TagThings      Tag = "XTHG"
	TagBits        Tag = "XBIT"
	TagTraffic     Tag = "XTRF"
	TagPollution   Tag = "XPLT"
	TagLandValue   Tag = "XVAL"
	TagCrime       Tag = "XCRM"
	TagPolice      Tag = "XPLC"
	TagFire        Tag = "XFIR"
	TagPopulation  Tag = "XPOP"
	TagGrowth      Tag = "XROG"
	TagGraphs      Tag = "XGRP"

	// TagWater is an attribute key only; it is sliced out of ALTM words.
	TagWater Tag = "WATR"
)

type tagKind uint8

const (
	kindUnknown tagKind = iota
	kindRaw
	kindCompressed
)

var tagKinds = map[Tag]tagKind{
	TagName:        kindRaw,
	TagAltitude:    kindRaw,
	TagPicture:     kindRaw,
	TagMisc:        kindCompressed,
	TagTerrain:     kindCompressed,
	TagBuilding:    kindCompressed,
	TagZone:        kindCompressed,
	TagUnderground: kindCompressed,
	TagText:        kindCompressed,
	TagLabels:      kindCompressed,
	TagMicrosim:    kindCompressed,
	TagThings:      kindCompressed,
	TagBits:        kindCompressed,
	TagTraffic:     kindCompressed,
	TagPollution:   kindCompressed,
	TagLandValue:   kindCompressed,
	TagCrime:       kindCompressed,
	TagPolice:      kindCompressed,
	TagFire:        kindCompressed,
	TagPopulation:  kindCompressed,
	TagGrowth:      kindCompressed,
	TagGraphs:      kindCompressed,
}

// Known reports whether the tag belongs to the documented chunk set.
func (t Tag) Known() bool {
	return tagKinds[t] != kindUnknown
}

// Compressed reports whether the tag's stored payload is run-length encoded.
// Unknown tags are stored opaque and report false.
func (t Tag) Compressed() bool {
	return tagKinds[t] == kindCompressed
}

func (t Tag) String() string {
	return string(t)
}

func tagFromBytes(b []byte) Tag {
	return Tag(b[:4])
}
