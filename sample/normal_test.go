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

package sample_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/arx-crypto/arxfe/sample"
	"github.com/stretchr/testify/assert"
)

// checkGaussian draws size samples and verifies that the empirical
// mean and standard deviation roughly match the expectations.
func checkGaussian(t *testing.T, s sample.Sampler, size int, meanLow, meanHigh, sdLow, sdHigh float64) {
	sum := 0.0
	sumSquares := 0.0
	for i := 0; i < size; i++ {
		x, err := s.Sample()
		if err != nil {
			t.Fatalf("error during sampling: %v", err)
		}
		xF := float64(x.Int64())
		sum += xF
		sumSquares += xF * xF
	}

	mean := sum / float64(size)
	sd := math.Sqrt(sumSquares/float64(size) - mean*mean)

	assert.True(t, mean >= meanLow && mean <= meanHigh,
		"empirical mean %f out of expected interval [%f, %f]", mean, meanLow, meanHigh)
	assert.True(t, sd >= sdLow && sd <= sdHigh,
		"empirical deviation %f out of expected interval [%f, %f]", sd, sdLow, sdHigh)
}

func TestNormalCumulative(t *testing.T) {
	sigma := big.NewFloat(10)
	s := sample.NewNormalCumulative(sigma, 256, true)
	checkGaussian(t, s, 10000, -1, 1, 8, 12)
}

func TestNormalCumulative_OneSided(t *testing.T) {
	sigma := big.NewFloat(10)
	s := sample.NewNormalCumulative(sigma, 256, false)

	for i := 0; i < 1000; i++ {
		x, err := s.Sample()
		if err != nil {
			t.Fatalf("error during sampling: %v", err)
		}
		assert.True(t, x.Sign() >= 0, "one sided sampler should output non-negative values")
	}
}

func TestNormalNegative(t *testing.T) {
	sigma := big.NewFloat(10)
	s := sample.NewNormalNegative(sigma, 256)
	checkGaussian(t, s, 5000, -1.5, 1.5, 8, 12)
}

func TestNormalDouble(t *testing.T) {
	sigma := big.NewFloat(10)
	s, err := sample.NewNormalDouble(sigma, 256, big.NewFloat(1))
	if err != nil {
		t.Fatalf("error during sampler creation: %v", err)
	}
	checkGaussian(t, s, 10000, -1, 1, 8, 12)

	_, err = sample.NewNormalDouble(big.NewFloat(10.5), 256, big.NewFloat(2))
	assert.Error(t, err, "sigma must be a multiple of firstSigma")
}

func TestNormalCDT(t *testing.T) {
	s := sample.NewNormalCDT()

	nonZero := 0
	for i := 0; i < 5000; i++ {
		x, err := s.Sample()
		if err != nil {
			t.Fatalf("error during sampling: %v", err)
		}
		assert.True(t, x.Sign() >= 0, "half-Gaussian values are non-negative")
		assert.True(t, x.Int64() < 16, "tail values should not appear")
		if x.Sign() != 0 {
			nonZero++
		}
	}
	assert.True(t, nonZero > 1000, "nonzero values should appear")
}

func TestNormalDoubleConstant(t *testing.T) {
	k := big.NewInt(12)
	s := sample.NewNormalDoubleConstant(k)

	// realized sigma is k * SigmaCDT
	sigma, _ := new(big.Float).Mul(sample.SigmaCDT, new(big.Float).SetInt(k)).Float64()
	checkGaussian(t, s, 10000, -1, 1, sigma*0.8, sigma*1.2)
}
