package parser

import (
	"fmt"
	"strings"

	"truckspec/internal/catalog"
	"truckspec/internal/textutil"
)

// EngineParser extracts engine records from accessory_engine_data units.
type EngineParser struct {
	opts Options
}

func NewEngineParser(opts Options) *EngineParser { return &EngineParser{opts: opts} }

func (p *EngineParser) Kind() Kind { return KindEngine }

// engineState accumulates fields while scanning. Name and rated power keep
// their first value; torque and rpm limit keep their last.
type engineState struct {
	name       string
	ratedPower string
	torque     string
	rpmLimit   string
}

func (s engineState) step(_ int, line string) engineState {
	if s.name == "" && strings.Contains(line, markerName) {
		if name, ok := ObjectName(line); ok {
			s.name = name
		}
	}

	if s.ratedPower == "" && strings.Contains(line, markerInfo) {
		if power, ok := EngineRatedPower(line); ok {
			s.ratedPower = power
		}
	}

	if strings.Contains(line, markerTorque) {
		if torque, ok := ColonValue(line); ok {
			s.torque = torque
		}
	}

	if strings.Contains(line, markerRPMLimit) {
		if rpm, ok := ColonValue(line); ok {
			s.rpmLimit = rpm
		}
	}

	return s
}

func (p *EngineParser) Parse(lines []string, src Source) (catalog.Engine, error) {
	s := fold(lines, engineState{}, engineState.step)

	switch {
	case s.name == "":
		return catalog.Engine{}, incomplete(KindEngine, "missing name")
	case s.ratedPower == "":
		return catalog.Engine{}, incomplete(KindEngine, "missing rated power")
	case s.torque == "":
		return catalog.Engine{}, incomplete(KindEngine, "missing torque")
	case p.opts.RequireRPMLimit && s.rpmLimit == "":
		return catalog.Engine{}, incomplete(KindEngine, "missing rpm limit")
	}

	return catalog.Engine{
		Name:       s.name,
		RatedPower: s.ratedPower,
		Torque:     s.torque,
		RPMLimit:   s.rpmLimit,
		Code:       p.opts.code(KindEngine, src),
	}, nil
}

func (p *EngineParser) ParseFile(filePath string, src Source) (catalog.Engine, error) {
	lines, err := textutil.ReadLines(filePath)
	if err != nil {
		return catalog.Engine{}, fmt.Errorf("engine file: %w", err)
	}
	return p.Parse(lines, src)
}
