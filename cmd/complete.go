package cmd

import (
	"flag"

	"github.com/etnz/dcadash"
	"github.com/etnz/dcadash/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the command line for shell completion.
//
// Install it with COMP_INSTALL=1 dcadash, remove it with COMP_UNINSTALL=1 dcadash.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagPredictors(flag.CommandLine),
	}
	for _, c := range Commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		root.Sub[c.Name()] = &complete.Command{Flags: flagPredictors(fs)}
	}
	if topics, err := docs.GetAllTopics(); err == nil {
		root.Sub["topic"].Args = predict.Set(append(topics, "readme"))
	}
	for _, name := range []string{"help", "flags", "commands"} {
		root.Sub[name] = &complete.Command{}
	}
	root.Sub["help"].Args = predict.Set(commandNames())
	return root
}

func commandNames() []string {
	names := make([]string, 0, len(Commands))
	for _, c := range Commands {
		names = append(names, c.Name())
	}
	return names
}

// flagPredictors predicts values for the flags of fs.
func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		flags[f.Name] = flagPredictor(f)
	})
	return flags
}

func flagPredictor(f *flag.Flag) complete.Predictor {
	switch f.Name {
	case "w":
		return predict.Set{
			string(dcadash.Window24h), string(dcadash.Window7d),
			string(dcadash.Window30d), string(dcadash.WindowAll),
		}
	case "data":
		return predict.Dirs("*")
	case "prices":
		return predict.Set{dcadash.PricesResource, dcadash.SnapshotsResource}
	}
	if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	return predict.Something
}
