package topology

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"skeleton3d/internal/models"
)

// Axes are the principal axes of a voxel set.
type Axes struct {
	Centroid [3]float64 `yaml:"centroid"`

	// Values are the covariance eigenvalues, largest first; Vectors[i] is the
	// unit axis belonging to Values[i].
	Values  [3]float64    `yaml:"values"`
	Vectors [3][3]float64 `yaml:"vectors"`

	// Linearity is (l1-l2)/l1: 1 for a straight curve, 0 for an isotropic set.
	Linearity float64 `yaml:"linearity"`
}

// PrincipalAxes computes the principal axes of the object voxels of v.
func PrincipalAxes(v *models.Volume) (Axes, error) {
	pts := voxelPoints(v)
	if len(pts) < 2 {
		return Axes{}, errors.New("topology: need at least two voxels for principal axes")
	}

	coords := mat.NewDense(len(pts), 3, nil)
	var ax Axes
	for i, p := range pts {
		coords.Set(i, 0, p.X)
		coords.Set(i, 1, p.Y)
		coords.Set(i, 2, p.Z)
	}
	for j := 0; j < 3; j++ {
		ax.Centroid[j] = stat.Mean(mat.Col(nil, j, coords), nil)
	}

	cov := mat.NewSymDense(3, nil)
	stat.CovarianceMatrix(cov, coords, nil)

	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return Axes{}, errors.New("topology: eigen decomposition failed")
	}
	values := eig.Values(nil)
	vectors := mat.NewDense(3, 3, nil)
	eig.VectorsTo(vectors)

	// gonum returns ascending eigenvalues
	for i := 0; i < 3; i++ {
		k := 2 - i
		ax.Values[i] = values[k]
		for j := 0; j < 3; j++ {
			ax.Vectors[i][j] = vectors.At(j, k)
		}
	}
	if ax.Values[0] > 0 {
		ax.Linearity = (ax.Values[0] - ax.Values[1]) / ax.Values[0]
	}
	return ax, nil
}
