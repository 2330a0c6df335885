package landmark

// Translate returns a copy of h with every point shifted by (dx, dy).
func (h Hand) Translate(dx, dy float64) Hand {
	out := h
	for i := range out.Points {
		out.Points[i].X += dx
		out.Points[i].Y += dy
	}
	return out
}

// OpenPalm returns a preset right hand with all five fingers extended upward.
// Coordinates are image-normalized, y grows downward, depth is wrist-relative.
func OpenPalm() Hand {
	landmarks := Hand{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	// Thumb extended outward
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.72}
	landmarks.Points[ThumbIP] = Point3D{X: 0.65, Y: 0.66}
	landmarks.Points[ThumbTip] = Point3D{X: 0.70, Y: 0.60}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.62}
	landmarks.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.54}
	landmarks.Points[IndexDIP] = Point3D{X: 0.565, Y: 0.45}
	landmarks.Points[IndexTip] = Point3D{X: 0.57, Y: 0.38}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.60}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.51}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.42}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.34}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.62}
	landmarks.Points[RingPIP] = Point3D{X: 0.44, Y: 0.54}
	landmarks.Points[RingDIP] = Point3D{X: 0.435, Y: 0.46}
	landmarks.Points[RingTip] = Point3D{X: 0.43, Y: 0.39}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.41, Y: 0.65}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.395, Y: 0.58}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.38, Y: 0.52}
	landmarks.Points[PinkyTip] = Point3D{X: 0.37, Y: 0.46}

	return landmarks
}

// Fist returns a preset right hand with every finger curled into the palm
// and the thumb folded low across the knuckles, clear of the index tip.
func Fist() Hand {
	landmarks := Hand{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.77}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.57, Y: 0.74}
	landmarks.Points[ThumbIP] = Point3D{X: 0.55, Y: 0.745}
	landmarks.Points[ThumbTip] = Point3D{X: 0.53, Y: 0.75}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.62}
	landmarks.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.58}
	landmarks.Points[IndexDIP] = Point3D{X: 0.55, Y: 0.63}
	landmarks.Points[IndexTip] = Point3D{X: 0.54, Y: 0.66}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.60}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.56}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.61}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.65}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.62}
	landmarks.Points[RingPIP] = Point3D{X: 0.45, Y: 0.58}
	landmarks.Points[RingDIP] = Point3D{X: 0.455, Y: 0.63}
	landmarks.Points[RingTip] = Point3D{X: 0.46, Y: 0.66}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.41, Y: 0.65}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.41, Y: 0.62}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.42, Y: 0.66}
	landmarks.Points[PinkyTip] = Point3D{X: 0.43, Y: 0.68}

	return landmarks
}

// Pinch returns a preset right hand with thumb and index tips touching
// while the remaining three fingers stay extended.
func Pinch() Hand {
	landmarks := OpenPalm()

	landmarks.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.72}
	landmarks.Points[ThumbIP] = Point3D{X: 0.62, Y: 0.64}
	landmarks.Points[ThumbTip] = Point3D{X: 0.63, Y: 0.56}

	landmarks.Points[IndexPIP] = Point3D{X: 0.58, Y: 0.55}
	landmarks.Points[IndexDIP] = Point3D{X: 0.61, Y: 0.54}
	landmarks.Points[IndexTip] = Point3D{X: 0.62, Y: 0.55}

	return landmarks
}
