// Package applehealth converts an Apple Health export.xml into activity events.
package applehealth

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/fitgrow/fitgrow-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// dateLayout is the timestamp format used throughout export.xml
const dateLayout = "2006-01-02 15:04:05 -0700"

const (
	typeStepCount = "HKQuantityTypeIdentifierStepCount"
	typeEnergy    = "HKQuantityTypeIdentifierDietaryEnergyConsumed"
	typeWater     = "HKQuantityTypeIdentifierDietaryWater"
	typeSleep     = "HKCategoryTypeIdentifierSleepAnalysis"

	workoutPrefix = "HKWorkoutActivityType"
	asleepPrefix  = "HKCategoryValueSleepAnalysisAsleep"
)

// Result is the outcome of parsing one export
type Result struct {
	Activities []models.Activity
	Skipped    int
}

// Parser reads Apple Health exports
type Parser struct {
	log *logrus.Logger
}

// NewParser initializes a new parser
func NewParser(log *logrus.Logger) *Parser {
	return &Parser{log: log}
}

// Parse reads an export document. Records it can't map are counted in Skipped.
// The returned activities carry no user id.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	root := doc.SelectElement("HealthData")
	if root == nil {
		return nil, fmt.Errorf("no HealthData element found in XML")
	}

	res := &Result{}
	for _, el := range root.SelectElements("Record") {
		a, err := p.parseRecord(el)
		if err != nil {
			p.log.Debugf("Skipping health record %s: %v", el.SelectAttrValue("type", "?"), err)
			res.Skipped++
			continue
		}
		res.Activities = append(res.Activities, *a)
	}
	for _, el := range root.SelectElements("Workout") {
		a, err := p.parseWorkout(el)
		if err != nil {
			p.log.Debugf("Skipping workout: %v", err)
			res.Skipped++
			continue
		}
		res.Activities = append(res.Activities, *a)
	}

	p.log.Infof("Parsed health export: %d activities, %d skipped", len(res.Activities), res.Skipped)
	return res, nil
}

func (p *Parser) parseRecord(el *etree.Element) (*models.Activity, error) {
	start, err := parseDate(el, "startDate")
	if err != nil {
		return nil, err
	}

	recordType := el.SelectAttrValue("type", "")
	unit := el.SelectAttrValue("unit", "")
	a := &models.Activity{Date: start}

	switch recordType {
	case typeStepCount:
		v, err := parseNumber(el, "value")
		if err != nil {
			return nil, err
		}
		a.Type, a.Value = models.ActivitySteps, v
	case typeEnergy:
		v, err := parseNumber(el, "value")
		if err != nil {
			return nil, err
		}
		kcal, err := toKilocalories(v, unit)
		if err != nil {
			return nil, err
		}
		a.Type, a.Value = models.ActivityCalories, kcal
	case typeWater:
		v, err := parseNumber(el, "value")
		if err != nil {
			return nil, err
		}
		litres, err := toLitres(v, unit)
		if err != nil {
			return nil, err
		}
		a.Type, a.Value = models.ActivityWater, litres
	case typeSleep:
		if !strings.HasPrefix(el.SelectAttrValue("value", ""), asleepPrefix) {
			return nil, fmt.Errorf("sleep value %q is not an asleep state", el.SelectAttrValue("value", ""))
		}
		end, err := parseDate(el, "endDate")
		if err != nil {
			return nil, err
		}
		if end.Before(start) {
			return nil, fmt.Errorf("sleep record ends before it starts")
		}
		a.Type, a.Value = models.ActivitySleep, end.Sub(start).Hours()
	default:
		return nil, fmt.Errorf("unsupported record type")
	}
	return a, nil
}

func (p *Parser) parseWorkout(el *etree.Element) (*models.Activity, error) {
	start, err := parseDate(el, "startDate")
	if err != nil {
		return nil, err
	}
	d, err := parseNumber(el, "duration")
	if err != nil {
		return nil, err
	}
	minutes, err := toMinutes(d, el.SelectAttrValue("durationUnit", "min"))
	if err != nil {
		return nil, err
	}

	kind := strings.TrimPrefix(el.SelectAttrValue("workoutActivityType", ""), workoutPrefix)
	return &models.Activity{
		Type:        models.ActivityWorkout,
		Value:       minutes,
		WorkoutType: strings.ToLower(kind),
		Duration:    &minutes,
		Notes:       el.SelectAttrValue("sourceName", ""),
		Date:        start,
	}, nil
}

func parseDate(el *etree.Element, attr string) (time.Time, error) {
	raw := el.SelectAttrValue(attr, "")
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s attribute missing", attr)
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", attr, err)
	}
	return t, nil
}

func parseNumber(el *etree.Element, attr string) (float64, error) {
	raw := el.SelectAttrValue(attr, "")
	if raw == "" {
		return 0, fmt.Errorf("%s attribute missing", attr)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", attr, err)
	}
	return v, nil
}

func toKilocalories(v float64, unit string) (float64, error) {
	switch unit {
	case "kcal", "Cal", "":
		return v, nil
	case "kJ":
		return v / 4.184, nil
	}
	return 0, fmt.Errorf("unsupported energy unit %q", unit)
}

func toLitres(v float64, unit string) (float64, error) {
	switch unit {
	case "L":
		return v, nil
	case "mL", "":
		return v / 1000, nil
	case "fl_oz_us":
		return v * 0.0295735, nil
	}
	return 0, fmt.Errorf("unsupported volume unit %q", unit)
}

func toMinutes(v float64, unit string) (float64, error) {
	switch unit {
	case "min", "":
		return v, nil
	case "hr":
		return v * 60, nil
	case "s":
		return v / 60, nil
	}
	return 0, fmt.Errorf("unsupported duration unit %q", unit)
}
