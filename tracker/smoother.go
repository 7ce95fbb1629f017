package tracker

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// curveStates is the filter state size, three sampled positions per curve
const curveStates = 6

// CurveFilter is a Kalman filter smoothing a sequence of lane models.  Each
// curve is represented by its x position at the top, middle and bottom rows
// of the frame, which are modelled as a random walk.
type CurveFilter struct {
	rows         [3]float64
	processNoise float64
	measureNoise float64
	mean         *mat.VecDense
	cov          *mat.Dense
	initiated    bool
}

// NewCurveFilter returns a filter for lane models fitted on frames of the
// given height
func NewCurveFilter(height int, p SmoothingParams) *CurveFilter {
	h := float64(height)

	return &CurveFilter{
		rows:         [3]float64{0, h / 2, h},
		processNoise: p.ProcessNoise,
		measureNoise: p.MeasureNoise,
	}
}

// Reset discards the filter state
func (f *CurveFilter) Reset() {
	f.mean = nil
	f.cov = nil
	f.initiated = false
}

// Filter adds the measured model to the filter and returns the smoothed
// model
func (f *CurveFilter) Filter(m LaneModel) (LaneModel, error) {

	z := f.sample(m)

	if !f.initiated {
		f.initiate(z)
		return m, nil
	}

	f.predict()

	if err := f.update(z); err != nil {
		return LaneModel{}, err
	}

	return f.model()
}

// initiate sets the state to the first measurement with the measurement
// variance
func (f *CurveFilter) initiate(z *mat.VecDense) {

	f.mean = mat.VecDenseCopyOf(z)
	f.cov = mat.NewDense(curveStates, curveStates, nil)

	for i := 0; i < curveStates; i++ {
		f.cov.Set(i, i, f.measureNoise)
	}

	f.initiated = true
}

// predict grows the state covariance by the process noise, the random walk
// motion model leaves the mean unchanged
func (f *CurveFilter) predict() {
	for i := 0; i < curveStates; i++ {
		f.cov.Set(i, i, f.cov.At(i, i)+f.processNoise)
	}
}

// update corrects the state with the measurement
func (f *CurveFilter) update(z *mat.VecDense) error {

	// innovation covariance S = P + R
	innovationCov := mat.NewSymDense(curveStates, nil)

	for i := 0; i < curveStates; i++ {
		for j := i; j < curveStates; j++ {
			v := f.cov.At(i, j)
			if i == j {
				v += f.measureNoise
			}
			innovationCov.SetSym(i, j, v)
		}
	}

	chol := mat.Cholesky{}

	if ok := chol.Factorize(innovationCov); !ok {
		return errors.New("failed to factorize innovation covariance")
	}

	// kalman gain K = P S^-1, solved as S K^T = P with P symmetric
	var gainT mat.Dense

	if err := chol.SolveTo(&gainT, f.cov); err != nil {
		return fmt.Errorf("failed to compute kalman gain: %w", err)
	}

	gain := mat.DenseCopyOf(gainT.T())

	// compute the innovation and correct the mean
	innovation := mat.NewVecDense(curveStates, nil)
	innovation.SubVec(z, f.mean)

	correction := mat.NewVecDense(curveStates, nil)
	correction.MulVec(gain, innovation)
	f.mean.AddVec(f.mean, correction)

	// P = P - K P
	var kp mat.Dense
	kp.Mul(gain, f.cov)

	newCov := mat.NewDense(curveStates, curveStates, nil)
	newCov.Sub(f.cov, &kp)
	f.cov = newCov

	return nil
}

// sample converts a lane model into the filter measurement vector
func (f *CurveFilter) sample(m LaneModel) *mat.VecDense {

	z := mat.NewVecDense(curveStates, nil)

	for i, y := range f.rows {
		z.SetVec(i, m.Left.At(y))
		z.SetVec(3+i, m.Right.At(y))
	}

	return z
}

// model converts the filter state back into lane curves
func (f *CurveFilter) model() (LaneModel, error) {

	ys := f.rows[:]
	left := []float64{f.mean.AtVec(0), f.mean.AtVec(1), f.mean.AtVec(2)}
	right := []float64{f.mean.AtVec(3), f.mean.AtVec(4), f.mean.AtVec(5)}

	l, err := FitQuadratic(ys, left)

	if err != nil {
		return LaneModel{}, err
	}

	r, err := FitQuadratic(ys, right)

	if err != nil {
		return LaneModel{}, err
	}

	return LaneModel{Left: l, Right: r}, nil
}
