package route

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

const gpxHeader = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="arc_router" xmlns="http://www.topografix.com/GPX/1/1">
`

// WriteGPX writes the path as a single GPX track, one trackpoint per path
// point, for consumption by GPS devices and fitness apps.
func WriteGPX(w io.Writer, name string, p Path) error {
	if len(p.Points) == 0 {
		return errors.New("can't write empty path")
	}

	if _, err := io.WriteString(w, gpxHeader); err != nil {
		return errors.Wrap(err, "can't write header")
	}

	buf := &xmlEscaper{}
	if err := xml.EscapeText(buf, []byte(name)); err != nil {
		return errors.Wrap(err, "can't escape track name")
	}

	if _, err := fmt.Fprintf(w, "\t<trk>\n\t\t<name>%s</name>\n\t\t<trkseg>\n", buf.data); err != nil {
		return errors.Wrap(err, "can't write track header")
	}
	for i, pt := range p.Points {
		if _, err := fmt.Fprintf(w, "\t\t\t<trkpt lat=\"%.8f\" lon=\"%.8f\" />\n", pt.Lat, pt.Lon); err != nil {
			return errors.Wrapf(err, "can't write trackpoint %d", i)
		}
	}
	if _, err := io.WriteString(w, "\t\t</trkseg>\n\t</trk>\n</gpx>\n"); err != nil {
		return errors.Wrap(err, "can't write trailer")
	}
	return nil
}

type xmlEscaper struct {
	data []byte
}

func (e *xmlEscaper) Write(p []byte) (int, error) {
	e.data = append(e.data, p...)
	return len(p), nil
}
