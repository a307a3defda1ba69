/*
 * PERQ1 - Main process.
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

package main

import (
	"io"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"
	"github.com/pkg/profile"

	"github.com/hkestrel/perq1/command/reader"
	config "github.com/hkestrel/perq1/config/configparser"
	"github.com/hkestrel/perq1/emu/core"
	logger "github.com/hkestrel/perq1/util/logger"

	_ "github.com/hkestrel/perq1/config/debugconfig"
	_ "github.com/hkestrel/perq1/emu/shugart"
)

func main() {
	optConfig := getopt.StringLong("config", 'c', "perq1.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Log debug to console")
	optProfile := getopt.BoolLong("profile", 'p', "Write a CPU profile")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	if *optProfile {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	var logWriter io.Writer
	if *optLogFile != "" {
		file, err := os.Create(*optLogFile)
		if err != nil {
			os.Stderr.WriteString("can't create log file " + *optLogFile + "\n")
			os.Exit(1)
		}
		defer file.Close()
		logWriter = file
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	log := slog.New(logger.NewHandler(logWriter,
		&slog.HandlerOptions{Level: programLevel}, optDebug))
	slog.SetDefault(log)

	log.Info("PERQ1 started")

	sys := core.Initialize()

	if _, err := os.Stat(*optConfig); os.IsNotExist(err) {
		log.Error("Configuration file " + *optConfig + " can't be found")
		os.Exit(1)
	}
	if err := config.LoadConfigFile(*optConfig); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}

	reader.ConsoleReader(sys)

	sys.Shutdown()
	log.Info("PERQ1 stopped")
}
