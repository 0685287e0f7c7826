package library

import (
	"fmt"
	"os"
	"sort"
	"strings"

	rpdf "rsc.io/pdf"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/extract"
)

// In-process fallback on rsc.io/pdf for hosts without poppler tools. The
// reader panics on malformed content streams, so every helper recovers and
// reports the panic as an error.

func withReader(path string, fn func(r *rpdf.Reader) error) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("pdf reader panic: %v", p)
		}
	}()

	r, err := rpdf.NewReader(f, fi.Size())
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	return fn(r)
}

func readerPageCount(path string) (int, error) {
	var n int
	err := withReader(path, func(r *rpdf.Reader) error {
		n = r.NumPage()
		return nil
	})
	return n, err
}

func readerDocText(path string) (string, int, error) {
	var pages int
	var parts []string
	err := withReader(path, func(r *rpdf.Reader) error {
		pages = r.NumPage()
		for i := 1; i <= pages; i++ {
			parts = append(parts, pageString(r.Page(i)))
		}
		return nil
	})
	if err != nil {
		return "", 0, err
	}
	return strings.Join(parts, "\f"), pages, nil
}

func readerPageText(path string, page int) (string, error) {
	var text string
	err := withReader(path, func(r *rpdf.Reader) error {
		if page >= r.NumPage() {
			return fmt.Errorf("page %d out of range (document has %d)", page, r.NumPage())
		}
		text = pageString(r.Page(page + 1))
		return nil
	})
	return text, err
}

// pageString reassembles reading order from positioned glyph runs: rows by
// descending Y, runs by ascending X, with a space inserted on horizontal gaps.
func pageString(p rpdf.Page) string {
	texts := p.Content().Text
	if len(texts) == 0 {
		return ""
	}

	sort.SliceStable(texts, func(i, j int) bool {
		yi, yj := texts[i].Y, texts[j].Y
		if yi != yj {
			return yi > yj
		}
		return texts[i].X < texts[j].X
	})

	var b strings.Builder
	curY := texts[0].Y
	prevEnd := texts[0].X
	for i, t := range texts {
		if i > 0 {
			if curY-t.Y > t.FontSize/2 {
				b.WriteByte('\n')
				curY = t.Y
			} else if t.X-prevEnd > t.FontSize/4 {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	return b.String()
}

// imageCensus lists embedded images by walking each page's XObject resources.
// page is 0-based; -1 means all pages.
func (e *Extractor) imageCensus(path string, page int) ([]extract.Image, error) {
	var images []extract.Image
	err := withReader(path, func(r *rpdf.Reader) error {
		first, last := 1, r.NumPage()
		if page >= 0 {
			if page >= r.NumPage() {
				return nil
			}
			first, last = page+1, page+1
		}
		for pn := first; pn <= last; pn++ {
			xobj := r.Page(pn).Resources().Key("XObject")
			keys := xobj.Keys()
			sort.Strings(keys)
			n := 0
			for _, k := range keys {
				obj := xobj.Key(k)
				if obj.Key("Subtype").Name() != "Image" {
					continue
				}
				n++
				images = append(images, extract.Image{
					Page:   pn,
					Number: n,
					Format: imageFormat(obj.Key("Filter")),
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

func imageFormat(filter rpdf.Value) string {
	name := filter.Name()
	if name == "" && filter.Len() > 0 {
		name = filter.Index(0).Name()
	}
	switch name {
	case "DCTDecode":
		return "jpeg"
	case "JPXDecode":
		return "jp2"
	case "CCITTFaxDecode":
		return "tiff"
	case "FlateDecode", "LZWDecode", "RunLengthDecode":
		return "png"
	default:
		return "raw"
	}
}
