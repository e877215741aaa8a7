package api

import "github.com/samcharles93/sc2k/pkg/sc2"

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// CitySummary describes one uploaded save.
type CitySummary struct {
	ID        string      `json:"id"`
	Object    string      `json:"object"`
	CreatedAt int64       `json:"created_at"`
	Filename  string      `json:"filename,omitempty"`
	Name      string      `json:"name"`
	Bytes     int         `json:"bytes"`
	Chunks    int         `json:"chunks"`
	Report    ReportBody  `json:"report"`
	Picture   *PictureDim `json:"picture,omitempty"`
}

type ReportBody struct {
	Unknown  []sc2.Tag       `json:"unknown"`
	Partial  map[sc2.Tag]int `json:"partial"`
	Excess   map[sc2.Tag]int `json:"excess"`
	Replaced []sc2.Tag       `json:"replaced"`
}

type PictureDim struct {
	Width  uint16 `json:"width"`
	Height uint16 `json:"height"`
}

type CityList struct {
	Object string        `json:"object"`
	Data   []CitySummary `json:"data"`
}

type NameResp struct {
	Name string `json:"name"`
}

type ChunkInfo struct {
	Tag        sc2.Tag `json:"tag"`
	Stored     uint32  `json:"stored_bytes"`
	Size       int     `json:"bytes"`
	Compressed bool    `json:"compressed"`
	Known      bool    `json:"known"`
}

type ChunkList struct {
	Object string      `json:"object"`
	Data   []ChunkInfo `json:"data"`
}

type DeleteResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

func reportBody(r sc2.Report) ReportBody {
	body := ReportBody{
		Unknown:  r.Unknown,
		Partial:  r.Partial,
		Excess:   r.Excess,
		Replaced: r.Replaced,
	}
	if body.Unknown == nil {
		body.Unknown = []sc2.Tag{}
	}
	if body.Replaced == nil {
		body.Replaced = []sc2.Tag{}
	}
	return body
}

func chunkInfos(c *sc2.Container) []ChunkInfo {
	chunks := c.Chunks()
	out := make([]ChunkInfo, 0, len(chunks))
	for _, ch := range chunks {
		out = append(out, ChunkInfo{
			Tag:        ch.Tag,
			Stored:     ch.Length,
			Size:       len(ch.Data),
			Compressed: ch.Tag.Compressed(),
			Known:      ch.Tag.Known(),
		})
	}
	return out
}
