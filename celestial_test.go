package smd

import (
	"testing"
)

func TestCelestialObjectJ(t *testing.T) {
	for _, object := range []CelestialObject{Sun, Venus, Earth, Mars, Jupiter} {
		var i uint8
		for i = 1; i < 6; i++ {
			switch {
			case i == 2 && object.J(i) != object.J2:
				t.Fatalf("J2 not returned for %s", object)
			case i == 3 && object.J(i) != object.J3:
				t.Fatalf("J3 not returned for %s", object)
			case i == 4 && object.J(i) != object.J4:
				t.Fatalf("J4 not returned for %s", object)
			case (i < 2 || i > 4) && object.J(i) != 0:
				t.Fatalf("J(%d) = %f != 0 for %s", i, object.J(i), object)
			}
		}
	}
}

func TestCelestialObjectGM(t *testing.T) {
	if Earth.GM() != 3.98600433e5 {
		t.Fatalf("unexpected Earth GM: %f", Earth.GM())
	}
}

func TestCelestialObjectFromString(t *testing.T) {
	for _, name := range []string{"Sun", "earth", "Mars", "JUPITER", "Venus", "Saturn", "Uranus", "Pluto"} {
		if _, err := CelestialObjectFromString(name); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	if _, err := CelestialObjectFromString("Vulcan"); err == nil {
		t.Fatal("expected error for unknown object")
	}
}

func TestCelestialObjectEquals(t *testing.T) {
	if !Earth.Equals(Earth) {
		t.Fatal("Earth should equal itself")
	}
	if Earth.Equals(Mars) {
		t.Fatal("Earth should not equal Mars")
	}
}
