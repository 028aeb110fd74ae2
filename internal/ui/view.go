package ui

import (
	"context"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/blume-tech/jetson-app/internal/camera"
	"github.com/blume-tech/jetson-app/internal/config"
	"github.com/blume-tech/jetson-app/internal/core"
	"github.com/blume-tech/jetson-app/internal/event"
	"github.com/blume-tech/jetson-app/internal/logger"
	"github.com/blume-tech/jetson-app/internal/ui/component"
	"github.com/blume-tech/jetson-app/internal/ui/key"
)

func restart() error {
	newUI := NewUI()
	return newUI.Launch()
}

type view struct {
	ctx             context.Context
	cancel          context.CancelFunc
	app             *tview.Application
	root            *tview.Flex
	pages           *tview.Pages
	header          *component.Header
	cameraTable     *component.CameraTable
	eventTable      *component.EventTable
	configureForm   *component.ConfigureForm
	contextTable    *component.ConfigContext
	appCore         *core.Core
	eventUpdateChan chan event.Event
	eventListenerId int
	focused         tview.Primitive
	focusedName     string
	viewNames       []string
	logger          logger.Logger
}

func newView(userIP string, appCore *core.Core) *view {
	log := logger.New()

	ctx, cancel := context.WithCancel(context.Background())

	app := tview.NewApplication()

	v := &view{
		ctx:       ctx,
		cancel:    cancel,
		appCore:   appCore,
		app:       app,
		viewNames: []string{"cameras", "events", "context", "configure"},
		logger:    log,
	}

	allConfigs, _ := v.appCore.GetConfigs()

	root := tview.NewFlex().SetDirection(tview.FlexRow)
	pages := tview.NewPages()

	header := component.NewHeader(
		userIP,
		v.appCore.Conf().Targets,
		v.onActionSubmit,
	)
	cameraTable := component.NewCameraTable()
	eventTable := component.NewEventTable()
	contextTable := component.NewConfigContext(
		v.appCore.Conf().Name,
		allConfigs,
		v.onContextSelect,
		v.onContextDelete,
	)

	configureForm := component.NewConfigureForm(
		v.appCore.Conf(),
		v.onConfigureFormSubmit,
	)

	pages.AddPage("cameras", cameraTable.Primitive(), true, false)
	pages.AddPage("events", eventTable.Primitive(), true, false)
	pages.AddPage("configure", configureForm.Primitive(), true, false)
	pages.AddPage("context", contextTable.Primitive(), true, false)

	root.
		AddItem(header.Primitive(), 13, 1, false).
		AddItem(pages, 0, 1, true)

	eventUpdateChan := make(chan event.Event, 100)

	eventListenerId := appCore.RegisterEventListener(eventUpdateChan)

	v.root = root
	v.pages = pages
	v.header = header
	v.cameraTable = cameraTable
	v.eventTable = eventTable
	v.configureForm = configureForm
	v.contextTable = contextTable
	v.eventUpdateChan = eventUpdateChan
	v.eventListenerId = eventListenerId

	v.focused = cameraTable.Primitive()
	v.focusedName = "cameras"

	v.focus()

	return v
}

func (v *view) onActionSubmit(text string) {
	for _, name := range v.viewNames {
		if strings.HasPrefix(name, text) {
			v.focusedName = name

			switch name {
			case "cameras":
				v.focused = v.cameraTable.Primitive()
			case "events":
				v.focused = v.eventTable.Primitive()
			case "configure":
				v.focused = v.configureForm.Primitive()
			case "context":
				v.focused = v.contextTable.Primitive()
			}

			break
		}
	}

	v.header.HideSwitchViewInput()
	v.focus()
}

func (v *view) onConfigureFormSubmit(conf config.Config) {
	active := v.appCore.Conf()

	if conf.Name == active.Name {
		conf.ID = active.ID

		if err := v.appCore.UpdateConfig(conf); err != nil {
			v.logger.Error().Err(err).Msg("failed to update config")
			return
		}
	} else {
		if err := v.appCore.CreateConfig(conf); err != nil {
			v.logger.Error().Err(err).Msg("failed to create config")
			return
		}

		if err := v.appCore.SetConfig(conf.Name); err != nil {
			v.logger.Error().Err(err).Msg("failed to set new config")
			return
		}
	}

	v.stop()
	restart()
}

func (v *view) onContextSelect(name string) {
	if err := v.appCore.SetConfig(name); err != nil {
		v.logger.Error().Err(err).Msg("failed to set new config")
		return
	}

	v.stop()
	restart()
}

func (v *view) onContextDelete(name string) {
	if err := v.appCore.DeleteConfig(name); err != nil {
		v.logger.Error().Err(err).Msg("failed to delete config")
		return
	}

	v.stop()
	restart()
}

func (v *view) bindKeys() {
	v.app.SetInputCapture(func(evt *tcell.EventKey) *tcell.EventKey {
		switch evt.Key() {
		case key.KeyCtrlC:
			v.stop()
			return evt
		case key.KeyEsc:
			if v.header.IsShowingSwitchViewInput() {
				v.header.HideSwitchViewInput()
				v.focus()
				return nil
			}
		}

		if evt.Rune() == key.RuneColon {
			if v.header.IsShowingSwitchViewInput() {
				return evt
			}

			v.header.ShowSwitchViewInput()
			v.app.SetFocus(v.header.SwitchViewInput().Primitive())

			return nil
		}

		// rune shortcuts only apply to table views where no text
		// input can have focus
		if v.header.IsShowingSwitchViewInput() {
			return evt
		}

		switch v.focusedName {
		case "cameras", "events", "context":
			switch evt.Rune() {
			case key.RuneR:
				v.appCore.TriggerScan(core.ScanOverrides{})
				return nil
			case key.RuneQ:
				v.stop()
				return nil
			}
		}

		return evt
	})
}

func (v *view) focus() {
	extraLegend := map[string]string{}

	switch v.focusedName {
	case "cameras", "events":
		extraLegend["r"] = "rescan network"
	case "context":
		extraLegend["enter"] = "select context"
		extraLegend["ctrl+d"] = "delete context"
	}

	v.header.RemoveExtraLegend()
	v.header.ShowExtraLegend(extraLegend)

	v.pages.SwitchToPage(v.focusedName)
	v.app.SetFocus(v.focused)
}

func (v *view) stop() {
	v.appCore.RemoveEventListener(v.eventListenerId)
	v.cancel()
	v.appCore.Stop()
	v.app.Stop()
	v.ctx = nil
	v.cancel = nil
}

func (v *view) processBackgroundEventUpdates() {
	go func() {
		for {
			select {
			case <-v.ctx.Done():
				return
			case evt := <-v.eventUpdateChan:
				v.app.QueueUpdateDraw(func() {
					if cameras, ok := evt.Payload.([]camera.Camera); ok {
						v.cameraTable.UpdateTable(cameras)
					}

					v.eventTable.UpdateTable(evt)
				})
			}
		}
	}()
}

func (v *view) pollScanStatus() {
	go func() {
		ticker := time.NewTicker(time.Second)

		defer ticker.Stop()

		for {
			select {
			case <-v.ctx.Done():
				return
			case <-ticker.C:
				status := v.appCore.ScanStatus()

				v.app.QueueUpdateDraw(func() {
					v.header.SetScanStatus(status)
				})
			}
		}
	}()
}

func (v *view) run() error {
	v.bindKeys()
	v.processBackgroundEventUpdates()
	v.pollScanStatus()

	v.appCore.StartDaemon()

	return v.app.SetRoot(v.root, true).EnableMouse(true).Run()
}
