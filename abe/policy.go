/*
 * Copyright (c) 2018 XLAB d.o.o
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package abe provides attribute based encryption schemes together
// with the shared policy engine translating boolean expressions over
// attributes into monotone span programs.
package abe

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/arx-crypto/arxfe/data"
	"github.com/pkg/errors"
)

// MSP is a monotone span program describing which attribute sets may
// decrypt: a matrix Mat together with a map RowToAttrib from its rows
// to attributes. An attribute set A satisfies the policy iff the rows
// mapped to elements of A span the target vector [1, 0, ..., 0] (or
// [1, 1, ..., 1], depending on how the MSP was built).
type MSP struct {
	P           *big.Int
	Mat         data.Matrix
	RowToAttrib []int
}

// BooleanToMSP converts a boolean expression over integer attributes,
// using AND and OR gates but no NOT, into an MSP by the Lewko-Waters
// algorithm. The resulting matrix has one row per attribute occurrence
// and the property that an assignment satisfies the expression iff the
// rows of the attributes assigned 1 span the target vector: with
// convertToOnes set the target is [1, 1, ..., 1], otherwise
// [1, 0, ..., 0].
func BooleanToMSP(boolExp string, convertToOnes bool) (*MSP, error) {
	vec := data.Vector{big.NewInt(1)}
	msp, _, err := booleanToMSPIterative(boolExp, vec, 1)
	if err != nil {
		return nil, err
	}

	if convertToOnes {
		// post-multiply by the invertible matrix with first row and
		// diagonal all ones, mapping target [1, 0, ..., 0] to
		// [1, 1, ..., 1]
		cols := msp.Mat.Cols()
		conv := data.Identity(cols, cols)
		for j := 1; j < cols; j++ {
			conv[0][j] = big.NewInt(1)
		}
		msp.Mat, err = msp.Mat.Mul(conv)
		if err != nil {
			return nil, err
		}
	}

	return msp, nil
}

// booleanToMSPIterative builds the MSP recursively: it locates the
// top-level AND or OR gate at bracket depth zero, converts the two
// sub-expressions, and joins the results. The vector vec is the share
// this node inherited from its parent and c counts the columns used so
// far. See Appendix G of https://eprint.iacr.org/2010/351.pdf.
func booleanToMSPIterative(boolExp string, vec data.Vector, c int) (*MSP, int, error) {
	boolExp = strings.TrimSpace(boolExp)

	var msp1, msp2 *MSP
	var c1, cOut int
	var err error
	found := false

	depth := 0
	for i, e := range boolExp {
		if e == '(' {
			depth++
			continue
		}
		if e == ')' {
			depth--
			continue
		}
		if depth != 0 {
			continue
		}
		if i < len(boolExp)-3 && boolExp[i:i+3] == "AND" {
			vec1, vec2 := makeAndVecs(vec, c)
			msp1, c1, err = booleanToMSPIterative(boolExp[:i], vec1, c+1)
			if err != nil {
				return nil, 0, err
			}
			msp2, cOut, err = booleanToMSPIterative(boolExp[i+3:], vec2, c1)
			if err != nil {
				return nil, 0, err
			}
			found = true
			break
		}
		if i < len(boolExp)-2 && boolExp[i:i+2] == "OR" {
			msp1, c1, err = booleanToMSPIterative(boolExp[:i], vec, c)
			if err != nil {
				return nil, 0, err
			}
			msp2, cOut, err = booleanToMSPIterative(boolExp[i+2:], vec, c1)
			if err != nil {
				return nil, 0, err
			}
			found = true
			break
		}
	}

	if !found {
		// no top-level gate: either the expression is parenthesized
		// as a whole, or it is a single attribute
		if len(boolExp) == 0 {
			return nil, 0, errors.New("empty sub-expression in boolean expression")
		}
		if boolExp[0] == '(' && boolExp[len(boolExp)-1] == ')' {
			return booleanToMSPIterative(boolExp[1:len(boolExp)-1], vec, c)
		}

		attrib, err := strconv.Atoi(boolExp)
		if err != nil {
			return nil, 0, errors.Wrap(err, "corrupted boolean expression")
		}

		row := make(data.Vector, c)
		for i := range row {
			if i < len(vec) {
				row[i] = new(big.Int).Set(vec[i])
			} else {
				row[i] = big.NewInt(0)
			}
		}

		return &MSP{Mat: data.Matrix{row}, RowToAttrib: []int{attrib}}, c, nil
	}

	// join the two sub-programs, padding the first one's rows to the
	// final column count
	mat := make(data.Matrix, len(msp1.Mat)+len(msp2.Mat))
	for i, row := range msp1.Mat {
		mat[i] = make(data.Vector, cOut)
		copy(mat[i], row)
		for j := len(row); j < cOut; j++ {
			mat[i][j] = big.NewInt(0)
		}
	}
	for i, row := range msp2.Mat {
		mat[i+len(msp1.Mat)] = row
	}

	return &MSP{
		Mat:         mat,
		RowToAttrib: append(msp1.RowToAttrib, msp2.RowToAttrib...),
	}, cOut, nil
}

// makeAndVecs splits the share vec of an AND node between its two
// children using a fresh column c: the left child owns -1 there, the
// right child inherits the parent's share plus 1 in column c, so only
// both together reconstruct vec.
func makeAndVecs(vec data.Vector, c int) (data.Vector, data.Vector) {
	vec1 := data.NewConstantVector(c+1, big.NewInt(0))
	vec2 := data.NewConstantVector(c+1, big.NewInt(0))
	for i := range vec {
		vec2[i].Set(vec[i])
	}
	vec1[c] = big.NewInt(-1)
	vec2[c] = big.NewInt(1)

	return vec1, vec2
}

// gaussianElimination solves mat * x = v over Z_p; it reports an error
// when no solution exists.
func gaussianElimination(mat data.Matrix, v data.Vector, p *big.Int) (data.Vector, error) {
	return data.GaussianEliminationSolver(mat, v, p)
}
