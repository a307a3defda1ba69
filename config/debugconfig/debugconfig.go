/*
 * PERQ1 - Debug options configuration.
 *
 * Copyright 2025, Howard Kestrel
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package debugconfig

import (
	config "github.com/hkestrel/perq1/config/configparser"
	"github.com/hkestrel/perq1/emu/core"
)

// The DEBUG statement turns on trace options for a device:
//
//	DEBUG SHUGART SEEK,CMD
//	DEBUG SHUGART ALL
func init() {
	config.RegisterModel("DEBUG", config.TypeOptions, setDebug)
}

func setDebug(_ uint16, deviceName string, options []config.Option) error {
	dev, err := core.GetDevice(deviceName)
	if err != nil {
		return err
	}
	for _, opt := range options {
		if err := dev.Debug(opt.Name); err != nil {
			return err
		}
		for _, value := range opt.Value {
			if err := dev.Debug(value); err != nil {
				return err
			}
		}
	}
	return nil
}
