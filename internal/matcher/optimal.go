package matcher

import (
	"math"

	"healthpage/internal/similarity"
)

// AssignOptimal returns the assignment maximizing total similarity (Hungarian method).
// Rows beyond the number of candidates are left unassigned (-1).
func AssignOptimal(m similarity.Matrix) []int {
	rows := len(m)
	if rows == 0 {
		return nil
	}
	cols := len(m[0])
	assignment := make([]int, rows)
	for i := range assignment {
		assignment[i] = -1
	}
	if cols == 0 {
		return assignment
	}

	// Square cost matrix; padding cells cost 0 and mean "unassigned".
	n := max(rows, cols)
	cost := make([][]float64, n+1)
	for i := 1; i <= n; i++ {
		cost[i] = make([]float64, n+1)
		for j := 1; j <= n; j++ {
			if i <= rows && j <= cols {
				s := m[i-1][j-1]
				if math.IsNaN(s) {
					s = -1
				}
				cost[i][j] = 1 - s
			}
		}
	}

	inf := math.Inf(1)
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	p := make([]int, n+1)
	way := make([]int, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, n+1)
		used := make([]bool, n+1)
		for j := range minv {
			minv[j] = inf
		}
		for {
			used[j0] = true
			i0, delta, j1 := p[j0], inf, 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0][j] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	for j := 1; j <= n; j++ {
		i := p[j]
		if i >= 1 && i <= rows && j <= cols {
			assignment[i-1] = j - 1
		}
	}
	return assignment
}
