package orrery

import (
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

func TestTransferType(t *testing.T) {
	for ttype, longway := range map[TransferType]bool{TType1: false, TType2: true, TType3: false, TType4: true} {
		if ttype.Longway() != longway {
			t.Fatalf("%s long way computation failed", ttype)
		}
	}
	for ttype, revs := range map[TransferType]float64{TTypeAuto: 0, TType1: 0, TType2: 0, TType3: 1, TType4: 1} {
		if ttype.Revs() != revs {
			t.Fatalf("%s revolutions computation failed", ttype)
		}
	}
	assertPanic(t, func() {
		TTypeAuto.Longway()
	})
	assertPanic(t, func() {
		_ = TransferType(99).String()
	})
	assertPanic(t, func() {
		TransferType(99).Revs()
	})
	t.Logf("[OK] %s %s %s %s %s", TTypeAuto, TType1, TType2, TType3, TType4)
}

func TestHohmannGEO(t *testing.T) {
	// Classical LEO to GEO raise.
	vDep, vArr, tof := Hohmann(6678.0, 42164.0, Earth)
	if !scalar.EqualWithinAbs(vDep, 10.15, 1e-2) {
		t.Fatalf("departure speed %f, expected ~10.15 km/s", vDep)
	}
	if !scalar.EqualWithinAbs(vArr, 1.61, 1e-2) {
		t.Fatalf("arrival speed %f, expected ~1.61 km/s", vArr)
	}
	if tof < 5*time.Hour || tof > 6*time.Hour {
		t.Fatalf("time of flight %s, expected just over five hours", tof)
	}
	// Δv of the full maneuver against the circular speeds.
	Δv := (vDep - 7.726) + (3.075 - vArr)
	if !scalar.EqualWithinAbs(Δv, 3.89, 1e-2) {
		t.Fatalf("total Δv %f, expected ~3.89 km/s", Δv)
	}
}

func TestLambertVallado(t *testing.T) {
	// From Vallado 4th edition, page 497
	Ri := mat.NewVecDense(3, []float64{15945.34, 0, 0})
	Rf := mat.NewVecDense(3, []float64{12214.83899, 10249.46731, 0})
	ViExp := mat.NewVecDense(3, []float64{2.058913, 2.915965, 0})
	VfExp := mat.NewVecDense(3, []float64{-3.451565, 0.910315, 0})
	for _, dm := range []TransferType{TTypeAuto, TType1} {
		Vi, Vf, φ, err := Lambert(Ri, Rf, 76.0*time.Minute, dm, Earth)
		if err != nil {
			t.Fatalf("err %s", err)
		}
		if !mat.EqualApprox(Vi, ViExp, 1e-6) {
			t.Logf("φ=%f", φ)
			t.Logf("\nGot %+v\nExp %+v\n", mat.Formatted(Vi.T()), mat.Formatted(ViExp.T()))
			t.Fatalf("[%s] incorrect Vi computed", dm)
		}
		if !mat.EqualApprox(Vf, VfExp, 1e-6) {
			t.Logf("φ=%f", φ)
			t.Logf("\nGot %+v\nExp %+v\n", mat.Formatted(Vf.T()), mat.Formatted(VfExp.T()))
			t.Fatalf("[%s] incorrect Vf computed", dm)
		}
		t.Logf("[OK] %s", dm)
	}
	// Test with dm=-1
	ViExp = mat.NewVecDense(3, []float64{-3.811158, -2.003854, 0})
	VfExp = mat.NewVecDense(3, []float64{4.207569, 0.914724, 0})

	Vi, Vf, φ, err := Lambert(Ri, Rf, 76.0*time.Minute, TType2, Earth)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if !mat.EqualApprox(Vi, ViExp, 1e-6) {
		t.Logf("φ=%f", φ)
		t.Logf("\nGot %+v\nExp %+v\n", mat.Formatted(Vi.T()), mat.Formatted(ViExp.T()))
		t.Fatalf("[%s] incorrect Vi computed", TType2)
	}
	if !mat.EqualApprox(Vf, VfExp, 1e-6) {
		t.Logf("φ=%f", φ)
		t.Logf("\nGot %+v\nExp %+v\n", mat.Formatted(Vf.T()), mat.Formatted(VfExp.T()))
		t.Fatalf("[%s] incorrect Vf computed", TType2)
	}
	t.Logf("[OK] %s", TType2)
}

func TestLambertErrors(t *testing.T) {
	// Invalid R vectors
	Rf := mat.NewVecDense(3, []float64{12214.83899, 10249.46731, 0})
	_, _, _, err := Lambert(mat.NewVecDense(2, []float64{15945.34, 0}), Rf, 76.0*time.Minute, TType2, Earth)
	if err == nil {
		t.Fatal("err should not be nil if the R vectors are of different dimensions")
	}
	_, _, _, err = Lambert(mat.NewVecDense(2, []float64{15945.34, 0}), mat.NewVecDense(2, []float64{12214.83899, 10249.46731}), 76.0*time.Minute, TType2, Earth)
	if err == nil {
		t.Fatal("err should not be nil if the R vectors are of not of dimension 3x1")
	}
}

func TestLambertMarsJupiter(t *testing.T) {
	// Heliocentric boundary problem over 1200 days.
	Ri := mat.NewVecDense(3, []float64{170145121.3, -117637192.8, -6642044.272})
	Rf := mat.NewVecDense(3, []float64{-803451694.7, 121525767.1, 17465211.78})
	Vi, Vf, φ, err := Lambert(Ri, Rf, 1200*24*time.Hour, TTypeAuto, Sun)
	if err != nil {
		t.Fatalf("err = %s", err)
	}
	ViExp := mat.NewVecDense(3, []float64{13.74077736, 28.83099312, 0.691285008})
	VfExp := mat.NewVecDense(3, []float64{-0.883933069, -7.983627014, -0.2407705978})
	if !mat.EqualApprox(Vi, ViExp, 1e-6) {
		t.Logf("φ=%f", φ)
		t.Logf("\nGot %+v\nExp %+v\n", mat.Formatted(Vi.T()), mat.Formatted(ViExp.T()))
		t.Fatal("incorrect Vi computed")
	}
	if !mat.EqualApprox(Vf, VfExp, 1e-6) {
		t.Logf("φ=%f", φ)
		t.Logf("\nGot %+v\nExp %+v\n", mat.Formatted(Vf.T()), mat.Formatted(VfExp.T()))
		t.Fatal("incorrect Vf computed")
	}
	t.Logf("[OK] φ=%f", φ)
}

func TestSystemTransferEstimates(t *testing.T) {
	sys := testSystem(t)
	vDep, vArr, tof, err := sys.EstimateTransfer("Earth", "Mars")
	if err != nil {
		t.Fatalf("estimate failed: %s", err)
	}
	// Earth to Mars: leave above 30 km/s, arrive above 20, about 260 days.
	if vDep < 30 || vDep > 35 {
		t.Fatalf("departure speed out of range: %f km/s", vDep)
	}
	if vArr < 20 || vArr > 25 {
		t.Fatalf("arrival speed out of range: %f km/s", vArr)
	}
	if days := tof.Hours() / 24; days < 200 || days > 320 {
		t.Fatalf("time of flight out of range: %f days", days)
	}
	if _, _, _, err := sys.EstimateTransfer("Earth", "Vesta"); err == nil {
		t.Fatal("estimate to an unknown body did not fail")
	}
	if _, _, _, err := sys.EstimateTransfer("Sun", "Mars"); err == nil {
		t.Fatal("estimate from an element-less body did not fail")
	}

	Vi, _, err := sys.TransferVelocities("Earth", "Mars", tof, TTypeAuto)
	if err != nil {
		t.Fatalf("Lambert between bodies failed: %s", err)
	}
	if speed := mat.Norm(Vi, 2); speed < 20 || speed > 45 {
		t.Fatalf("Lambert departure speed out of range: %f km/s", speed)
	}
	if _, _, err := sys.TransferVelocities("Earth", "Vesta", tof, TTypeAuto); err == nil {
		t.Fatal("Lambert to an unknown body did not fail")
	}
}
