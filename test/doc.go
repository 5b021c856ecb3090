// This file is part of Mockingboard.
//
// Mockingboard is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Mockingboard is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Mockingboard.  If not, see <https://www.gnu.org/licenses/>.

// Package test contains helper functions to remove common boilerplate to make
// testing easier.
//
// The Expect functions test a value against an expected condition and mark
// the test as failed if the condition is not met. The Demand functions do the
// same but treat failure as a testing fatality, which is useful when later
// tests depend on the demanded condition.
//
// It is worth describing how the Expect/Demand success functions handle the
// nil type because it is not obvious. The nil type is considered a success
// and consequently will cause ExpectFailure to fail and ExpectSuccess to
// succeed. This may not be how we want to interpret nil in all situations
// but because of how errors usually work (nil to indicate no error) we
// *need* to interpret nil in this way.
//
// The CompareWriter type implements the io.Writer interface and should be
// used to capture output. The CompareWriter.Compare() function can then be
// used to test for equality.
//
// The Assert function panics if its condition does not hold. It does nothing
// unless the "assertions" build tag is specified at compile time. It is used
// by emulation code to guard internal invariants that are too expensive, or
// too awkward, to check in release builds.
package test
