// Package audio owns capture: input devices, the capture buffer, and the
// WAV artifacts recordings are materialized into.
package audio

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// ErrDevice reports an unavailable or misconfigured input device.
var ErrDevice = errors.New("audio device error")

// Device describes one audio input device.
type Device struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Channels int    `json:"channels"`
	Default  bool   `json:"default"`
}

// DeviceManager enumerates and resolves PortAudio input devices.
type DeviceManager struct{}

// NewDeviceManager initializes PortAudio and returns a manager. Close must
// be called to release the host API.
func NewDeviceManager() (*DeviceManager, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: initializing portaudio: %v", ErrDevice, err)
	}
	return &DeviceManager{}, nil
}

// Close terminates PortAudio.
func (dm *DeviceManager) Close() error {
	return portaudio.Terminate()
}

// Devices lists all devices that can capture audio.
func (dm *DeviceManager) Devices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("%w: listing devices: %v", ErrDevice, err)
	}
	def, _ := portaudio.DefaultInputDevice()

	var devices []Device
	for i, info := range infos {
		if info.MaxInputChannels < 1 {
			continue
		}
		devices = append(devices, Device{
			ID:       i,
			Name:     info.Name,
			Channels: info.MaxInputChannels,
			Default:  info == def,
		})
	}
	return devices, nil
}

// resolve maps a device id to its PortAudio info. An id < 0 selects the
// system default input.
func (dm *DeviceManager) resolve(id int) (*portaudio.DeviceInfo, error) {
	if id < 0 {
		info, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("%w: no default input device: %v", ErrDevice, err)
		}
		return info, nil
	}
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("%w: listing devices: %v", ErrDevice, err)
	}
	if id >= len(infos) || infos[id].MaxInputChannels < 1 {
		return nil, fmt.Errorf("%w: device %d is not an input device", ErrDevice, id)
	}
	return infos[id], nil
}
