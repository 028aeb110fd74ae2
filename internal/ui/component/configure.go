package component

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/blume-tech/jetson-app/internal/config"
	"github.com/blume-tech/jetson-app/internal/ui/style"
)

type ConfigureForm struct {
	root             *tview.Form
	configName       *tview.InputField
	cidrInput        *tview.InputField
	portsInput       *tview.InputField
	pathsInput       *tview.InputField
	concurrencyInput *tview.InputField
	timeoutInput     *tview.InputField
	prescanCheckbox  *tview.Checkbox
	conf             config.Config
}

func generateBlankForm(conf config.Config) *ConfigureForm {
	configName := tview.NewInputField()
	configName.SetLabel("Config Name: ")

	cidrInput := tview.NewInputField()
	cidrInput.SetLabel("Comma Separated CIDRs or IPs: ")

	portsInput := tview.NewInputField()
	portsInput.SetLabel("Comma Separated Ports: ")

	pathsInput := tview.NewInputField()
	pathsInput.SetLabel("Comma Separated Stream Paths: ")

	concurrencyInput := tview.NewInputField()
	concurrencyInput.SetLabel("Probe Concurrency: ")

	timeoutInput := tview.NewInputField()
	timeoutInput.SetLabel("Probe Timeout (ms): ")

	prescanCheckbox := tview.NewCheckbox()
	prescanCheckbox.SetLabel("Nmap Prescan: ")

	form := tview.NewForm()
	form.AddFormItem(configName)
	form.AddFormItem(cidrInput)
	form.AddFormItem(portsInput)
	form.AddFormItem(pathsInput)
	form.AddFormItem(concurrencyInput)
	form.AddFormItem(timeoutInput)
	form.AddFormItem(prescanCheckbox)

	form.SetTitle(conf.Name + " Configuration")
	form.SetBorder(true)
	form.SetBorderColor(style.ColorPurple)
	form.SetFieldBackgroundColor(tcell.ColorDefault)
	form.SetButtonBackgroundColor(style.ColorLightGreen)
	form.SetLabelColor(style.ColorOrange)
	form.SetButtonTextColor(style.ColorBlack)
	form.SetButtonActivatedStyle(
		style.StyleDefault.Background(style.ColorLightGreen),
	)

	return &ConfigureForm{
		root:             form,
		configName:       configName,
		cidrInput:        cidrInput,
		portsInput:       portsInput,
		pathsInput:       pathsInput,
		concurrencyInput: concurrencyInput,
		timeoutInput:     timeoutInput,
		prescanCheckbox:  prescanCheckbox,
		conf:             conf,
	}
}

func addFormButtons(form *ConfigureForm, onSubmit func(conf config.Config)) {
	form.root.AddButton("New Config", func() {
		form.configName.SetText("")
		form.cidrInput.SetText("")
		form.portsInput.SetText("")
		form.pathsInput.SetText("")
		form.concurrencyInput.SetText("")
		form.timeoutInput.SetText("")
		form.prescanCheckbox.SetChecked(false)
	})

	form.root.AddButton("OK", func() {
		name := form.configName.GetText()
		cidr := form.cidrInput.GetText()

		if name == "" || cidr == "" {
			return
		}

		conf := config.Config{
			Name:    name,
			Targets: parseStringList(cidr, form.conf.Targets),
			Scan: config.ScanConfig{
				Ports: parseIntList(
					form.portsInput.GetText(),
					form.conf.Scan.Ports,
				),
				Paths: parseStringList(
					form.pathsInput.GetText(),
					form.conf.Scan.Paths,
				),
				Concurrency: parseInt(
					form.concurrencyInput.GetText(),
					form.conf.Scan.Concurrency,
				),
				ProbeTimeoutMs: parseInt(
					form.timeoutInput.GetText(),
					form.conf.Scan.ProbeTimeoutMs,
				),
				NmapPrescan: form.prescanCheckbox.IsChecked(),
			},
			API:       form.conf.API,
			Telemetry: form.conf.Telemetry,
		}

		onSubmit(conf)
	})
}

func NewConfigureForm(conf config.Config, onSubmit func(conf config.Config)) *ConfigureForm {
	form := generateBlankForm(conf)

	form.configName.SetText(conf.Name)
	form.cidrInput.SetText(strings.Join(conf.Targets, ","))
	form.portsInput.SetText(joinInts(conf.Scan.Ports))
	form.pathsInput.SetText(strings.Join(conf.Scan.Paths, ","))
	form.concurrencyInput.SetText(strconv.Itoa(conf.Scan.Concurrency))
	form.timeoutInput.SetText(strconv.Itoa(conf.Scan.ProbeTimeoutMs))
	form.prescanCheckbox.SetChecked(conf.Scan.NmapPrescan)

	addFormButtons(form, onSubmit)

	return form
}

func (f *ConfigureForm) Primitive() tview.Primitive {
	return f.root
}

func joinInts(values []int) string {
	parts := make([]string, len(values))

	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}

	return strings.Join(parts, ",")
}

func parseStringList(text string, fallback []string) []string {
	values := []string{}

	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)

		if part == "" {
			continue
		}

		values = append(values, part)
	}

	if len(values) == 0 {
		return fallback
	}

	return values
}

func parseIntList(text string, fallback []int) []int {
	values := []int{}

	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)

		if part == "" {
			continue
		}

		value, err := strconv.Atoi(part)

		if err != nil {
			continue
		}

		values = append(values, value)
	}

	if len(values) == 0 {
		return fallback
	}

	return values
}

func parseInt(text string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(text))

	if err != nil || value <= 0 {
		return fallback
	}

	return value
}
