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

package abe

import (
	"math/big"
	"testing"

	"github.com/arx-crypto/arxfe/data"
	"github.com/fentec-project/bn256"
	"github.com/stretchr/testify/assert"
)

// satisfies reports whether the rows of the MSP belonging to the given
// attribute set span the reconstruction target.
func satisfies(msp *MSP, attribs []int, toOnes bool) bool {
	owned := make(map[int]bool)
	for _, a := range attribs {
		owned[a] = true
	}

	rows := make([]data.Vector, 0)
	for i, a := range msp.RowToAttrib {
		if owned[a] {
			rows = append(rows, msp.Mat[i])
		}
	}
	if len(rows) == 0 {
		return false
	}
	mat, _ := data.NewMatrix(rows)

	var target data.Vector
	if toOnes {
		target = data.NewConstantVector(mat.Cols(), big.NewInt(1))
	} else {
		target = data.NewConstantVector(mat.Cols(), big.NewInt(0))
		target[0] = big.NewInt(1)
	}

	_, err := gaussianElimination(mat.Transpose(), target, bn256.Order)

	return err == nil
}

func TestBooleanToMSP(t *testing.T) {
	boolExp := "(5 OR 3) AND ((2 OR 4) OR (1 AND 6))"

	cases := []struct {
		attribs   []int
		satisfied bool
	}{
		{[]int{1, 3, 6}, true},
		{[]int{5, 2}, true},
		{[]int{3, 4}, true},
		{[]int{5, 3}, false},
		{[]int{1, 6}, false},
		{[]int{2}, false},
		{[]int{1, 2, 3, 4, 5, 6, 7}, true},
		{[]int{}, false},
	}

	for _, toOnes := range []bool{false, true} {
		msp, err := BooleanToMSP(boolExp, toOnes)
		if err != nil {
			t.Fatalf("error during the conversion: %v", err)
		}
		assert.Equal(t, len(msp.Mat), len(msp.RowToAttrib))

		for _, c := range cases {
			assert.Equal(t, c.satisfied, satisfies(msp, c.attribs, toOnes),
				"attributes %v wrongly classified", c.attribs)
		}
	}
}

func TestBooleanToMSP_Corrupted(t *testing.T) {
	for _, exp := range []string{"1 AND", "AND 2", "1 AND x", "("} {
		_, err := BooleanToMSP(exp, true)
		assert.Error(t, err, "expression %q should be rejected", exp)
	}
}
