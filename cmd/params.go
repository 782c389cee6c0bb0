/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/notargets/gospectral/InputParameters"
)

// ParamsCmd represents the params command
var ParamsCmd = &cobra.Command{
	Use:   "params",
	Short: "Print an example input parameters file, or check one",
	Long: `
Without arguments prints an example input parameters file. With -I the file is
parsed, validated and printed with the defaults filled in.

gospectral params -I params.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		fileName, _ := cmd.Flags().GetString("inputParametersFile")
		if err := printParams(os.Stdout, fileName); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(ParamsCmd)
	ParamsCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file for input parameters to check")
}

func printParams(w io.Writer, fileName string) (err error) {
	var (
		data []byte
	)
	if len(fileName) == 0 {
		fmt.Fprintf(w, "Example File:%s\n", InputParameters.ExampleFile)
		return
	}
	if data, err = os.ReadFile(fileName); err != nil {
		return
	}
	ip := InputParameters.NewParameters()
	if err = ip.Parse(data); err != nil {
		return
	}
	if err = ip.Validate(); err != nil {
		return
	}
	ip.Print(w)
	if data, err = ip.Marshal(); err != nil {
		return
	}
	fmt.Fprintf(w, "\n%s", data)
	return
}
