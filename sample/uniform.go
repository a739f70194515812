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

package sample

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// UniformRange samples uniformly from the interval [min, max).
type UniformRange struct {
	min *big.Int
	max *big.Int
}

// NewUniformRange returns a sampler of uniform values from [min, max).
func NewUniformRange(min, max *big.Int) *UniformRange {
	return &UniformRange{
		min: min,
		max: max,
	}
}

// Sample returns a uniform value from [min, max).
func (u *UniformRange) Sample() (*big.Int, error) {
	if u.max.Cmp(u.min) <= 0 {
		return nil, fmt.Errorf("upper bound should exceed lower bound")
	}

	width := new(big.Int).Sub(u.max, u.min)
	res, err := rand.Int(rand.Reader, width)
	if err != nil {
		return nil, err
	}

	return res.Add(res, u.min), nil
}

// NewUniform returns a sampler of uniform values from [0, max).
func NewUniform(max *big.Int) *UniformRange {
	return NewUniformRange(big.NewInt(0), max)
}

// NewBit returns a sampler of single random bits.
func NewBit() *UniformRange {
	return NewUniform(big.NewInt(2))
}
