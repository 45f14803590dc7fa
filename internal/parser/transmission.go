package parser

import (
	"fmt"
	"strings"

	"truckspec/internal/catalog"
	"truckspec/internal/textutil"
)

// unset marks a ratio index that has not been seen. Zero is a valid line.
const unset = -1

// TransmissionParser extracts transmission records from
// accessory_transmission_data units.
type TransmissionParser struct {
	opts Options
}

func NewTransmissionParser(opts Options) *TransmissionParser {
	return &TransmissionParser{opts: opts}
}

func (p *TransmissionParser) Kind() Kind { return KindTransmission }

type transmissionState struct {
	name     string
	speeds   int
	first    int
	last     int
	retarder bool
}

func newTransmissionState() transmissionState {
	return transmissionState{first: unset, last: unset}
}

func (s transmissionState) step(i int, line string) transmissionState {
	if s.name == "" && strings.Contains(line, markerName) {
		if name, ok := ObjectName(line); ok {
			s.name = name
		}
	}

	if strings.Contains(line, markerRatiosForward) {
		if s.first == unset {
			s.first = i
		} else {
			s.last = i
		}
		s.speeds++
	}

	if strings.Contains(line, markerRetarder) {
		s.retarder = true
	}

	return s
}

func (p *TransmissionParser) Parse(lines []string, src Source) (catalog.Transmission, error) {
	s := fold(lines, newTransmissionState(), transmissionState.step)

	if s.first == unset || s.last == unset {
		return catalog.Transmission{}, incomplete(KindTransmission,
			fmt.Sprintf("need two forward ratios, found %d", s.speeds))
	}

	first, ok := ColonValue(lines[s.first])
	if !ok {
		return catalog.Transmission{}, incomplete(KindTransmission, "unreadable first ratio")
	}
	last, ok := ColonValue(lines[s.last])
	if !ok {
		return catalog.Transmission{}, incomplete(KindTransmission, "unreadable last ratio")
	}

	if s.name == "" {
		return catalog.Transmission{}, incomplete(KindTransmission, "missing name")
	}

	return catalog.Transmission{
		Name:     s.name,
		Speeds:   s.speeds,
		Retarder: s.retarder,
		Ratio:    fmt.Sprintf("%s - %s", first, last),
		Code:     p.opts.code(KindTransmission, src),
	}, nil
}

func (p *TransmissionParser) ParseFile(filePath string, src Source) (catalog.Transmission, error) {
	lines, err := textutil.ReadLines(filePath)
	if err != nil {
		return catalog.Transmission{}, fmt.Errorf("transmission file: %w", err)
	}
	return p.Parse(lines, src)
}
