package applehealth

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/fitgrow/fitgrow-backend/internal/logging"
	"github.com/fitgrow/fitgrow-backend/internal/models"
)

const sampleExport = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE HealthData>
<HealthData locale="en_US">
 <ExportDate value="2026-10-14 20:00:00 -0700"/>
 <Record type="HKQuantityTypeIdentifierStepCount" sourceName="iPhone" unit="count" startDate="2026-10-14 07:30:00 -0700" endDate="2026-10-14 07:45:00 -0700" value="1500"/>
 <Record type="HKQuantityTypeIdentifierDietaryWater" sourceName="WaterLog" unit="mL" startDate="2026-10-14 09:00:00 -0700" endDate="2026-10-14 09:00:00 -0700" value="500"/>
 <Record type="HKQuantityTypeIdentifierDietaryEnergyConsumed" sourceName="MyFood" unit="kJ" startDate="2026-10-14 12:00:00 -0700" endDate="2026-10-14 12:00:00 -0700" value="2092"/>
 <Record type="HKCategoryTypeIdentifierSleepAnalysis" sourceName="Watch" startDate="2026-10-13 23:00:00 -0700" endDate="2026-10-14 06:30:00 -0700" value="HKCategoryValueSleepAnalysisAsleepCore"/>
 <Record type="HKCategoryTypeIdentifierSleepAnalysis" sourceName="Watch" startDate="2026-10-13 22:30:00 -0700" endDate="2026-10-14 06:45:00 -0700" value="HKCategoryValueSleepAnalysisInBed"/>
 <Record type="HKQuantityTypeIdentifierHeartRate" sourceName="Watch" unit="count/min" startDate="2026-10-14 07:30:00 -0700" endDate="2026-10-14 07:30:00 -0700" value="72"/>
 <Record type="HKQuantityTypeIdentifierStepCount" sourceName="iPhone" unit="count" startDate="yesterday" value="10"/>
 <Workout workoutActivityType="HKWorkoutActivityTypeRunning" duration="0.5" durationUnit="hr" sourceName="Watch" startDate="2026-10-14 18:00:00 -0700" endDate="2026-10-14 18:30:00 -0700"/>
</HealthData>`

func TestParse(t *testing.T) {
	p := NewParser(logging.Discard())

	res, err := p.Parse(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if res.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3 (in bed, heart rate, bad date)", res.Skipped)
	}
	if len(res.Activities) != 5 {
		t.Fatalf("Parse() returned %d activities, want 5", len(res.Activities))
	}

	want := []struct {
		typ   models.ActivityType
		value float64
	}{
		{models.ActivitySteps, 1500},
		{models.ActivityWater, 0.5},
		{models.ActivityCalories, 500},
		{models.ActivitySleep, 7.5},
		{models.ActivityWorkout, 30},
	}
	for i, w := range want {
		got := res.Activities[i]
		if got.Type != w.typ || math.Abs(got.Value-w.value) > 1e-9 {
			t.Errorf("activity %d = %s %v, want %s %v", i, got.Type, got.Value, w.typ, w.value)
		}
	}

	steps := res.Activities[0]
	wantDate := time.Date(2026, 10, 14, 14, 30, 0, 0, time.UTC)
	if !steps.Date.Equal(wantDate) {
		t.Errorf("steps date = %v, want %v", steps.Date, wantDate)
	}

	workout := res.Activities[4]
	if workout.WorkoutType != "running" || workout.Duration == nil || *workout.Duration != 30 {
		t.Errorf("workout = %+v", workout)
	}
}

func TestParseRejectsForeignDocument(t *testing.T) {
	p := NewParser(logging.Discard())

	if _, err := p.Parse(strings.NewReader(`<gpx><trk/></gpx>`)); err == nil {
		t.Errorf("Parse() of non-export XML succeeded")
	}
	if _, err := p.Parse(strings.NewReader(`not xml at all <`)); err == nil {
		t.Errorf("Parse() of malformed input succeeded")
	}
}

func TestUnitConversions(t *testing.T) {
	if v, _ := toLitres(16, "fl_oz_us"); math.Abs(v-0.473176) > 1e-6 {
		t.Errorf("toLitres(16 fl oz) = %v", v)
	}
	if _, err := toLitres(1, "gallon"); err == nil {
		t.Errorf("toLitres() accepted an unknown unit")
	}
	if v, _ := toMinutes(90, "s"); v != 1.5 {
		t.Errorf("toMinutes(90 s) = %v, want 1.5", v)
	}
	if v, _ := toKilocalories(250, "Cal"); v != 250 {
		t.Errorf("toKilocalories(250 Cal) = %v, want 250", v)
	}
}
